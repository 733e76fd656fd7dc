package twfy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"pmqwatch/lib/restyutil"
	"pmqwatch/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://www.theyworkforyou.com"

const debatesPath = "/pwdata/scrapedxml/debates/"

// ErrDebateNotFound marks an edition that does not exist on the server.
// The enumerator over-generates candidates so this is the common case,
// callers treat it as an absence rather than a failure.
var ErrDebateNotFound = fmt.Errorf("debate edition does not exist")

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// minimum spacing between consecutive requests, zero disables the gate
	MinRequestInterval time.Duration
	// when set, full request/response dumps are written through it at
	// debug log level
	InstrumentOutput restyutil.InstrumentOutput
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	minInterval time.Duration
	reqMu       sync.Mutex
	lastRequest time.Time
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	if opts.InstrumentOutput != nil {
		restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)
	} else {
		telemetry.InstrumentResty(client, "scrapers/twfy/http")
	}

	return &Client{
		BaseUrl:     baseUrl,
		Http:        client,
		minInterval: opts.MinRequestInterval,
	}, nil
}

// waitTurn spaces requests out so a fetch run does not hammer the
// site, the bound on in-flight workers is low but a burst of starts
// would still land at once without this.
func (c *Client) waitTurn() {
	if c.minInterval <= 0 {
		return
	}
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	wait := c.minInterval - time.Since(c.lastRequest)
	if wait > 0 {
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

// FetchDebateXML retrieves the raw xml of one edition. A 404 comes
// back as ErrDebateNotFound, anything else non-2xx is a real error.
func (c *Client) FetchDebateXML(ctx context.Context, cand Candidate) ([]byte, error) {
	c.waitTurn()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(debatesPath + cand.Filename())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cand.Key(), err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, ErrDebateNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch %s: status %s", cand.Key(), res.Status())
	}
	return res.Body(), nil
}

// FetchDebate retrieves and parses one edition into a contribution
// table. Superseded revisions come back as an empty table.
func (c *Client) FetchDebate(ctx context.Context, cand Candidate) (ContributionTable, error) {
	data, err := c.FetchDebateXML(ctx, cand)
	if err != nil {
		return nil, err
	}

	table, err := ParseDebateXML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cand.Key(), err)
	}
	slog.DebugContext(ctx, "fetched debate edition",
		"key", cand.Key(),
		"contributions", len(table),
	)
	return table, nil
}
