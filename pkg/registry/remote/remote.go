// Package remote scrapes component descriptors from the documentation site.
// It backs registry.Fallback for components the embedded table lacks.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/registry"
)

const DefaultTimeout = 10 * time.Second

var ErrBadStatus = errors.Base("unexpected http status")

// Fetcher downloads "<mirror>/comps/<name>.html" from each mirror in turn and
// parses the first page that loads.
type Fetcher struct {
	client  *http.Client
	mirrors []string
}

var _ registry.Fetcher = (*Fetcher)(nil)

func NewFetcher(mirrors []string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if len(mirrors) == 0 {
		mirrors = []string{registry.DefaultDocsBaseURL}
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		mirrors: mirrors,
	}
}

// PageURL is where name is documented on mirror.
func PageURL(mirror, name string) string {
	return fmt.Sprintf("%s/comps/%s.html", strings.TrimSuffix(mirror, "/"), name)
}

func (me *Fetcher) Fetch(ctx context.Context, name string) (*registry.Descriptor, error) {
	var merr *multierror.Error
	notFound := 0

	for _, mirror := range me.mirrors {
		u := PageURL(mirror, name)

		doc, err := me.get(ctx, u)
		if errors.Is(err, registry.ErrNotFound) {
			notFound++
			continue
		}
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("url", u).Msg("mirror failed")
			merr = multierror.Append(merr, err)
			continue
		}

		d, err := Parse(name, doc)
		if err != nil {
			merr = multierror.Append(merr, errors.Errorf("parsing %s: %w", u, err))
			continue
		}
		d.DocURL = u

		return d, nil
	}

	if notFound == len(me.mirrors) {
		return nil, errors.WithDetails(registry.ErrNotFound, "component", name)
	}

	return nil, errors.Errorf("fetching %q from %d mirrors: %w", name, len(me.mirrors), merr.ErrorOrNil())
}

func (me *Fetcher) get(ctx context.Context, u string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "tmls (+https://github.com/walteh/tmls)")

	resp, err := me.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("requesting %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.WithStack(registry.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, u)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading html: %w", err)
	}

	return doc, nil
}
