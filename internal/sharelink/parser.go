// Package sharelink turns public music share links into now-playing
// metadata. It is the distribution-safe way to learn what someone is
// listening to: no private broker, just the public page behind the
// link the user already shared.
package sharelink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// Hosts we know how to scrape
var supportedHosts = map[string]bool{
	"open.spotify.com":  true,
	"spotify.link":      true,
	"music.apple.com":   true,
	"itunes.apple.com":  true,
	"music.youtube.com": true,
	"www.youtube.com":   true,
	"youtube.com":       true,
	"youtu.be":          true,
}

// Parser resolves share links by scraping the public page behind them
type Parser struct {
	logger *zap.Logger
	client *http.Client
}

// NewParser creates a new share-link parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve validates the link against the supported hosts and extracts
// track metadata from the page behind it
func (p *Parser) Resolve(ctx context.Context, link string) (*domain.NowPlaying, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("invalid share link: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", parsed.Scheme)
	}
	if !supportedHosts[strings.ToLower(parsed.Host)] {
		return nil, fmt.Errorf("unsupported share link host: %s", parsed.Host)
	}

	return p.scrape(ctx, link)
}

// scrape fetches the page and extracts metadata, trying JSON-LD first
// and falling back to Open Graph tags
func (p *Parser) scrape(ctx context.Context, link string) (*domain.NowPlaying, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set realistic User-Agent to avoid blocks
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if info, err := extractFromJSONLD(doc); err == nil {
		p.logger.Debug("Share link resolved from JSON-LD",
			zap.String("title", info.Title),
			zap.String("artist", info.Artist))
		return info, nil
	} else {
		p.logger.Debug("JSON-LD extraction failed, trying Open Graph", zap.Error(err))
	}

	info, err := extractFromOpenGraph(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to extract metadata: %w", err)
	}

	p.logger.Debug("Share link resolved from Open Graph",
		zap.String("title", info.Title),
		zap.String("artist", info.Artist))
	return info, nil
}

// extractFromJSONLD parses JSON-LD structured data looking for a
// MusicRecording block
func extractFromJSONLD(doc *goquery.Document) (*domain.NowPlaying, error) {
	var info *domain.NowPlaying

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true // Continue to next script tag
		}

		if typeVal, ok := data["@type"].(string); !ok || typeVal != "MusicRecording" {
			return true
		}

		title := getString(data, "name")
		if title == "" {
			return true
		}

		info = &domain.NowPlaying{
			Title:  title,
			ArtURL: getString(data, "image"),
			Status: domain.StatusPlaying,
		}

		if artistData, ok := data["byArtist"].(map[string]interface{}); ok {
			info.Artist = getString(artistData, "name")
		} else if artistArray, ok := data["byArtist"].([]interface{}); ok {
			// Multiple artists: keep the first
			for _, a := range artistArray {
				if artistMap, ok := a.(map[string]interface{}); ok {
					if name := getString(artistMap, "name"); name != "" {
						info.Artist = name
						break
					}
				}
			}
		}

		if albumData, ok := data["inAlbum"].(map[string]interface{}); ok {
			info.Album = getString(albumData, "name")
		}

		return false // Found what we need, stop iteration
	})

	if info == nil || info.Title == "" {
		return nil, fmt.Errorf("no JSON-LD MusicRecording data found")
	}
	if info.Artist == "" {
		return nil, fmt.Errorf("no artist data found in JSON-LD")
	}

	return info, nil
}

// extractFromOpenGraph extracts metadata from Open Graph meta tags
func extractFromOpenGraph(doc *goquery.Document) (*domain.NowPlaying, error) {
	title, _ := doc.Find("meta[property='og:title']").Attr("content")
	if title == "" {
		title, _ = doc.Find("meta[name='twitter:title']").Attr("content")
	}
	if title == "" {
		return nil, fmt.Errorf("no title found in Open Graph tags")
	}

	var artist string
	artist, _ = doc.Find("meta[property='music:musician']").Attr("content")
	if artist == "" {
		artist, _ = doc.Find("meta[property='music:musician_description']").Attr("content")
	}

	album, _ := doc.Find("meta[property='music:album']").Attr("content")

	artURL, _ := doc.Find("meta[property='og:image']").Attr("content")

	// Spotify and Apple Music page titles are formatted as
	// "Track Name - Artist Name" when the meta tags are missing
	if artist == "" {
		pageTitle := doc.Find("title").First().Text()
		if strings.Contains(pageTitle, " - ") {
			parts := strings.SplitN(pageTitle, " - ", 2)
			artist = strings.TrimSpace(parts[1])
			artist = strings.TrimSuffix(artist, " on Apple Music")
			artist = strings.TrimSuffix(artist, " | Spotify")
		}
	}
	if artist == "" {
		return nil, fmt.Errorf("no artist found in Open Graph tags or page title")
	}

	return &domain.NowPlaying{
		Title:  title,
		Artist: artist,
		Album:  album,
		ArtURL: artURL,
		Status: domain.StatusPlaying,
	}, nil
}

// getString safely extracts a string value from a map
func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key].(string); ok {
		return val
	}
	return ""
}
