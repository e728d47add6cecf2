package cobot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/hubreport/pkg/config"
	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/types"
)

// ErrNoData marks a hub and date the provider could not serve. Callers skip
// that hub and date and carry on with the batch.
var ErrNoData = errors.New("no snapshot data")

// maxPages bounds pagination against a provider that never returns a short page.
const maxPages = 1000

// Source yields membership snapshots for one hub as of one date.
type Source interface {
	Fetch(ctx context.Context, hub string, asOf time.Time) ([]types.MembershipSnapshot, error)
}

// Client reads the memberships endpoint with a bearer token.
type Client struct {
	http *http.Client
	cfg  cfgpkg.CobotConfig
	log  *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		http: &http.Client{Timeout: cfg.Cobot.Timeout},
		cfg:  cfg.Cobot,
		log:  log,
	}
}

func (c *Client) Fetch(ctx context.Context, hub string, asOf time.Time) ([]types.MembershipSnapshot, error) {
	ctx, span := otel.Tracer("cobot").Start(ctx, "cobot.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("hub", hub), attribute.String("as_of", dateutil.FormatDate(asOf)))

	var out []types.MembershipSnapshot
	for page := 1; ; page++ {
		items, err := c.fetchPage(ctx, hub, asOf, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, items...)
		if c.cfg.PageSize <= 0 || len(items) < c.cfg.PageSize {
			break
		}
		if page >= maxPages {
			return nil, fmt.Errorf("%w: hub %s exceeded %d pages", ErrNoData, hub, maxPages)
		}
	}
	span.SetAttributes(attribute.Int("snapshots", len(out)))
	logctx.FromCtx(ctx, c.log).Infow("fetched memberships", "hub", hub, "as_of", dateutil.FormatDate(asOf), "count", len(out))
	return out, nil
}

func (c *Client) pageURL(hub string, asOf time.Time, page int) (string, error) {
	u, err := url.Parse(fmt.Sprintf(c.cfg.URLTemplate, url.PathEscape(hub)))
	if err != nil {
		return "", fmt.Errorf("failed to build memberships url: %w", err)
	}
	q := u.Query()
	q.Set("as_of", dateutil.FormatDate(asOf))
	if c.cfg.PageSize > 0 {
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.cfg.PageSize))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) fetchPage(ctx context.Context, hub string, asOf time.Time, page int) ([]types.MembershipSnapshot, error) {
	endpoint, err := c.pageURL(hub, asOf, page)
	if err != nil {
		return nil, err
	}
	op := func() ([]types.MembershipSnapshot, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			err := fmt.Errorf("%w: hub %s as_of %s: status %d", ErrNoData, hub, dateutil.FormatDate(asOf), resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		var raw []json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: hub %s: decode memberships: %v", ErrNoData, hub, err))
		}
		return decodeSnapshots(raw), nil
	}
	notify := func(err error, wait time.Duration) {
		logctx.FromCtx(ctx, c.log).Warnw("memberships fetch retry", "hub", hub, "page", page, "wait", wait, "err", err)
	}
	items, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.cfg.MaxRetries+1),
		backoff.WithNotify(notify),
	)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: hub %s: %v", ErrNoData, hub, err)
	}
	return items, nil
}

// decodeSnapshots decodes each record on its own. A record that does not fit
// MembershipSnapshot is kept with DecodeError set so it is skipped downstream
// instead of failing the page.
func decodeSnapshots(raw []json.RawMessage) []types.MembershipSnapshot {
	items := make([]types.MembershipSnapshot, 0, len(raw))
	for _, r := range raw {
		var snap types.MembershipSnapshot
		if err := json.Unmarshal(r, &snap); err != nil {
			snap = types.MembershipSnapshot{ID: recordID(r), DecodeError: err.Error()}
		}
		items = append(items, snap)
	}
	return items
}

func recordID(r json.RawMessage) string {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(r, &head); err != nil || len(head.ID) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(head.ID, &id); err == nil {
		return id
	}
	return string(head.ID)
}
