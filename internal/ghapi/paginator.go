package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alimgiray/whodid/pkg/logger"
)

// FetchAll materializes a paginated list endpoint into its items, following
// Link rel="next" until exhausted. A failure mid-run returns the items
// accumulated so far; a failure before anything was accumulated returns the
// error. Item order follows the API's order and every page is appended once.
func (c *Client) FetchAll(ctx context.Context, rawURL string, params url.Values) ([]json.RawMessage, error) {
	var all []json.RawMessage
	currentURL := rawURL
	page := 1

	for currentURL != "" {
		resp, err := c.get(ctx, currentURL, params, "")
		params = nil // the next link carries its own query string

		if err != nil {
			if len(all) > 0 {
				logger.WithError(err).Warnf("Pagination aborted on page %d of %s, keeping %d items", page, rawURL, len(all))
				return all, nil
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusNoContent {
			resp.Body.Close()
			break
		}

		body, readErr := io.ReadAll(resp.Body)
		next := nextPageURL(resp.Header.Get("Link"))
		resp.Body.Close()
		if readErr != nil {
			if len(all) > 0 {
				return all, nil
			}
			return nil, fmt.Errorf("reading page %d of %s: %w", page, rawURL, readErr)
		}

		if len(bytes.TrimSpace(body)) == 0 {
			logger.Warnf("Received empty response body from %s", currentURL)
			break
		}

		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			// An API error object fails the whole fetch unless something was
			// already accumulated; other non-list payloads just end pagination.
			if isErrorPayload(body) {
				if len(all) > 0 {
					return all, nil
				}
				return nil, fmt.Errorf("error payload from %s", currentURL)
			}
			logger.Warnf("Expected a list payload from %s, stopping pagination", currentURL)
			break
		}

		if len(items) == 0 {
			break
		}
		all = append(all, items...)

		currentURL = next
		if currentURL != "" {
			page++
			c.sleep(ctx, c.PageDelay)
		}
	}

	return all, nil
}

// nextPageURL extracts the rel="next" target from a Link header, e.g.
// <https://api.github.com/repos/acme/widgets/issues?page=2>; rel="next"
func nextPageURL(header string) string {
	for _, link := range strings.Split(header, ",") {
		if !strings.Contains(link, `rel="next"`) {
			continue
		}
		start := strings.Index(link, "<")
		end := strings.Index(link, ">")
		if start >= 0 && end > start {
			return link[start+1 : end]
		}
	}
	return ""
}

func isErrorPayload(body []byte) bool {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	_, hasMessage := payload["message"]
	_, hasErrors := payload["errors"]
	return hasMessage || hasErrors
}
