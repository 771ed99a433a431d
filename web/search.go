package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/khaibq/my-website/search"
	"github.com/khaibq/my-website/site"
)

// DefaultSearchLimit is the number of results returned when the request does not say.
const DefaultSearchLimit = 20

// Searcher gives access to the search indexes of a site.
type Searcher interface {
	Config() *site.Config
	Search(locale string) *search.Index
}

// SearchResponse is the body returned by SearchHandler.
type SearchResponse struct {
	Query   string          `json:"query"`
	Locale  string          `json:"locale"`
	Results []search.Result `json:"results"`
}

// SearchHandler answers GET requests like /api/search?q=aws&locale=vi&limit=5 with JSON.
// Result URLs and paths follow the search options of the site.
func SearchHandler(s Searcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		cfg := s.Config()
		resp := SearchResponse{
			Query:  q.Get("q"),
			Locale: q.Get("locale"),
		}
		if resp.Locale == "" {
			resp.Locale = cfg.I18n.DefaultLocale
		}
		idx := s.Search(resp.Locale)
		if idx == nil {
			http.Error(w, "unknown locale", http.StatusNotFound)
			return
		}
		limit := DefaultSearchLimit
		if l := q.Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		resp.Results = idx.Query(resp.Query, search.Options{
			Highlight:    cfg.Search.HighlightSearchTermsOnTargetPage,
			ExplicitPath: cfg.Search.ExplicitSearchResultPath,
			Limit:        limit,
		})
		if resp.Results == nil {
			resp.Results = []search.Result{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("SearchHandler: %s", err)
		}
	})
}
