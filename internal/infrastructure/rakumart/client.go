package rakumart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/config"
	"github.com/run651/rakumart-1688/internal/domain"
)

// Operation names one remote call. It keys endpoint overrides and log lines.
type Operation string

const (
	OpSearch             Operation = "search"
	OpDetail             Operation = "detail"
	OpImageID            Operation = "image_id"
	OpLogistics          Operation = "logistics"
	OpTags               Operation = "tags"
	OpLogisticsTrack     Operation = "logistics_track"
	OpCreateOrder        Operation = "create_order"
	OpUpdateOrderStatus  Operation = "update_order_status"
	OpCancelOrder        Operation = "cancel_order"
	OpOrderList          Operation = "order_list"
	OpOrderDetail        Operation = "order_detail"
	OpStockList          Operation = "stock_list"
	OpCreatePorder       Operation = "create_porder"
	OpUpdatePorderStatus Operation = "update_porder_status"
	OpCancelPorder       Operation = "cancel_porder"
	OpPorderList         Operation = "porder_list"
	OpPorderDetail       Operation = "porder_detail"
)

// EndpointField returns the slot in e holding op's URL, or nil.
func EndpointField(e *config.Endpoints, op Operation) *string {
	switch op {
	case OpSearch:
		return &e.Search
	case OpDetail:
		return &e.Detail
	case OpImageID:
		return &e.ImageID
	case OpLogistics:
		return &e.Logistics
	case OpTags:
		return &e.Tags
	case OpLogisticsTrack:
		return &e.LogisticsTrack
	case OpCreateOrder:
		return &e.CreateOrder
	case OpUpdateOrderStatus:
		return &e.UpdateOrderStatus
	case OpCancelOrder:
		return &e.CancelOrder
	case OpOrderList:
		return &e.OrderList
	case OpOrderDetail:
		return &e.OrderDetail
	case OpStockList:
		return &e.StockList
	case OpCreatePorder:
		return &e.CreatePorder
	case OpUpdatePorderStatus:
		return &e.UpdatePorderStatus
	case OpCancelPorder:
		return &e.CancelPorder
	case OpPorderList:
		return &e.PorderList
	case OpPorderDetail:
		return &e.PorderDetail
	}
	return nil
}

// Options configures a Client.
type Options struct {
	AppKey        string
	AppSecret     string
	Sign          SignFunc
	Endpoints     config.Endpoints
	ShopType      string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
	HTTPClient    *http.Client
	Logger        *zap.Logger
	Now           func() time.Time
}

// OptionsFromConfig maps the api config section onto client options.
func OptionsFromConfig(cfg config.APIConfig, log *zap.Logger) (Options, error) {
	sign, err := SignerFor(cfg.SignMethod)
	if err != nil {
		return Options{}, err
	}
	return Options{
		AppKey:        cfg.AppKey,
		AppSecret:     cfg.AppSecret,
		Sign:          sign,
		Endpoints:     cfg.Endpoints,
		ShopType:      cfg.ShopType,
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.RatePerSecond,
		RateBurst:     cfg.RateBurst,
		Logger:        log,
	}, nil
}

// Client calls the sourcing API. Every endpoint method logs its failure and
// returns a nil value with a classified error; none of them panic.
type Client struct {
	appKey    string
	appSecret string
	sign      SignFunc
	endpoints config.Endpoints
	shopType  string
	transport *Transport
	log       *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	trace io.Writer
}

// NewClient creates a new sourcing API client
func NewClient(opts Options) *Client {
	if opts.Sign == nil {
		opts.Sign = MD5Sign
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ShopType == "" {
		opts.ShopType = "1688"
	}
	return &Client{
		appKey:    opts.AppKey,
		appSecret: opts.AppSecret,
		sign:      opts.Sign,
		endpoints: opts.Endpoints,
		shopType:  opts.ShopType,
		transport: NewTransport(opts.HTTPClient, opts.Timeout, opts.RatePerSecond, opts.RateBurst),
		log:       opts.Logger.Named("rakumart"),
		now:       opts.Now,
	}
}

// SetTrace makes the client print each request's endpoint and fields to w.
// A nil writer turns tracing off.
func (c *Client) SetTrace(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trace = w
}

// Endpoint returns the URL used for op.
func (c *Client) Endpoint(op Operation) string {
	if p := EndpointField(&c.endpoints, op); p != nil {
		return *p
	}
	return ""
}

// ShopType returns the default marketplace.
func (c *Client) ShopType() string {
	return c.shopType
}

// signed starts a field list with the signature triple.
func (c *Client) signed() Fields {
	ts := strconv.FormatInt(c.now().Unix(), 10)
	return Fields{
		{Name: "app_key", Value: c.appKey},
		{Name: "timestamp", Value: ts},
		{Name: "sign", Value: c.sign(c.appKey, c.appSecret, ts)},
	}
}

// call posts fields to op's endpoint and checks the envelope. It returns the
// decoded envelope on success and logs every failure with the operation
// name.
func (c *Client) call(ctx context.Context, op Operation, fields Fields, form bool) (*Envelope, error) {
	endpoint := c.Endpoint(op)
	log := c.log.With(zap.String("operation", string(op)), zap.String("endpoint", endpoint))

	c.mu.Lock()
	if c.trace != nil {
		fmt.Fprintf(c.trace, "POST %s\n%s", endpoint, fields)
	}
	c.mu.Unlock()

	var (
		raw json.RawMessage
		err error
	)
	if form && !fields.HasFiles() {
		raw, err = c.transport.PostForm(ctx, endpoint, fields)
	} else {
		raw, err = c.transport.PostMultipart(ctx, endpoint, fields)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransportTimeout):
			log.Warn("request timed out", zap.Error(err))
		case errors.Is(err, domain.ErrResponseDecode):
			log.Warn("response is not JSON", zap.Error(err))
		default:
			log.Warn("request failed", zap.Error(err))
		}
		return nil, err
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		log.Error("unexpected response structure", zap.ByteString("envelope", raw), zap.Error(err))
		return nil, err
	}
	if err := env.Err(); err != nil {
		if env.InvalidCredentials() {
			log.Error("app key invalid or not recognized; check app key, app secret and endpoint URL",
				zap.String("code", env.Code.String()), zap.String("msg", env.Msg))
		} else {
			log.Warn("API reported failure", zap.ByteString("envelope", raw))
		}
		return nil, err
	}
	return env, nil
}

// payload extracts data at path and logs the full envelope when it is
// missing.
func (c *Client) payload(op Operation, env *Envelope, path ...string) (json.RawMessage, error) {
	data := env.Field(path...)
	if data == nil {
		full, _ := json.Marshal(env)
		c.log.Error("unexpected response structure",
			zap.String("operation", string(op)),
			zap.Strings("path", append([]string{"data"}, path...)),
			zap.ByteString("envelope", full))
		return nil, fmt.Errorf("%w: %s: data missing", domain.ErrUnexpectedEnvelope, op)
	}
	return data, nil
}

func (c *Client) decodeFailed(op Operation, data json.RawMessage, err error) error {
	c.log.Error("unexpected payload shape",
		zap.String("operation", string(op)),
		zap.ByteString("payload", data),
		zap.Error(err))
	return fmt.Errorf("%w: %s: %v", domain.ErrUnexpectedEnvelope, op, err)
}
