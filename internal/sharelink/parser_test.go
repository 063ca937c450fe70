package sharelink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

const jsonLDPage = `<!DOCTYPE html>
<html><head>
<script type="application/ld+json">
{"@type":"MusicRecording","name":"Song A","byArtist":{"name":"Artist B"},"inAlbum":{"name":"Album C"},"image":"https://example.com/art.jpg"}
</script>
</head><body></body></html>`

const openGraphPage = `<!DOCTYPE html>
<html><head>
<title>Song A - Artist B on Apple Music</title>
<meta property="og:title" content="Song A"/>
<meta property="og:image" content="https://example.com/og.jpg"/>
<meta property="music:album" content="Album C"/>
</head><body></body></html>`

const emptyPage = `<!DOCTYPE html><html><head></head><body></body></html>`

func TestScrape(t *testing.T) {
	tests := []struct {
		name          string
		page          string
		statusCode    int
		expectedError string
		check         func(*testing.T, *domain.NowPlaying)
	}{
		{
			name:       "JSON-LD MusicRecording",
			page:       jsonLDPage,
			statusCode: http.StatusOK,
			check: func(t *testing.T, info *domain.NowPlaying) {
				if info.Title != "Song A" || info.Artist != "Artist B" {
					t.Errorf("unexpected track: %+v", info)
				}
				if info.Album != "Album C" {
					t.Errorf("Album: got '%s'", info.Album)
				}
				if info.ArtURL != "https://example.com/art.jpg" {
					t.Errorf("ArtURL: got '%s'", info.ArtURL)
				}
				if info.Status != domain.StatusPlaying {
					t.Errorf("Status: expected Playing, got %v", info.Status)
				}
			},
		},
		{
			name:       "Open Graph Fallback With Title Suffix",
			page:       openGraphPage,
			statusCode: http.StatusOK,
			check: func(t *testing.T, info *domain.NowPlaying) {
				if info.Title != "Song A" {
					t.Errorf("Title: got '%s'", info.Title)
				}
				if info.Artist != "Artist B" {
					t.Errorf("Artist: got '%s'", info.Artist)
				}
				if info.Album != "Album C" {
					t.Errorf("Album: got '%s'", info.Album)
				}
				if info.ArtURL != "https://example.com/og.jpg" {
					t.Errorf("ArtURL: got '%s'", info.ArtURL)
				}
			},
		},
		{
			name:          "No Metadata At All",
			page:          emptyPage,
			statusCode:    http.StatusOK,
			expectedError: "failed to extract metadata",
		},
		{
			name:          "Upstream 404",
			page:          "not found",
			statusCode:    http.StatusNotFound,
			expectedError: "unexpected status code: 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.page))
			}))
			defer server.Close()

			p := NewParser(zap.NewNop())
			info, err := p.scrape(context.Background(), server.URL)

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, info)
		})
	}
}

func TestResolve_HostValidation(t *testing.T) {
	tests := []struct {
		name          string
		link          string
		expectedError string
	}{
		{"Garbage Input", "://not-a-url", "invalid share link"},
		{"Unsupported Scheme", "ftp://open.spotify.com/track/x", "unsupported scheme"},
		{"Unknown Host", "https://evil.example.com/track/x", "unsupported share link host"},
	}

	p := NewParser(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Resolve(context.Background(), tt.link)
			if err == nil {
				t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
			}
			if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
			}
		})
	}
}

func TestSupportedHosts(t *testing.T) {
	for _, host := range []string{
		"open.spotify.com",
		"music.apple.com",
		"youtu.be",
		"music.youtube.com",
	} {
		if !supportedHosts[host] {
			t.Errorf("expected %s to be a supported host", host)
		}
	}
}
