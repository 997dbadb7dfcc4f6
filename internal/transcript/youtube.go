// Package transcript fetches timed captions of YouTube videos.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"assist/internal/domain"
	"assist/internal/logger"
)

const (
	DefaultWatchURL  = "https://www.youtube.com/watch"
	DefaultUserAgent = "Mozilla/5.0 (compatible; assist/1.0)"
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBody   = 8 << 20

	playerResponseMarker = "ytInitialPlayerResponse"
)

// Config configures YouTubeSource.
type Config struct {
	WatchURL     string
	Languages    []string
	UserAgent    string
	Timeout      time.Duration
	// MaxBodyBytes caps each watch page and caption download.
	MaxBodyBytes int64
	HTTPClient   *http.Client
}

// YouTubeSource discovers caption tracks on the watch page and downloads the
// timed-text document of the best matching track.
type YouTubeSource struct {
	watchURL  string
	languages []string
	userAgent string
	maxBody   int64
	client    *http.Client
}

func NewYouTubeSource(cfg Config) *YouTubeSource {
	if cfg.WatchURL == "" {
		cfg.WatchURL = DefaultWatchURL
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en"}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBody
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &YouTubeSource{
		watchURL:  cfg.WatchURL,
		languages: cfg.Languages,
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
		client:    client,
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// Fetch returns the ordered transcript segments of videoID.
func (s *YouTubeSource) Fetch(ctx context.Context, videoID string) ([]domain.TranscriptSegment, error) {
	if !videoIDPattern.MatchString(videoID) {
		return nil, ErrInvalidURL
	}

	watch, err := url.Parse(s.watchURL)
	if err != nil {
		return nil, &Error{VideoID: videoID, Message: "invalid watch URL", Cause: err}
	}
	q := watch.Query()
	q.Set("v", videoID)
	watch.RawQuery = q.Encode()

	page, err := s.get(ctx, watch.String())
	if err != nil {
		return nil, &Error{VideoID: videoID, Message: "fetch watch page", Cause: err}
	}

	player, err := parsePlayerResponse(page)
	if err != nil {
		return nil, &Error{VideoID: videoID, Message: "read player response", Cause: err}
	}
	track, ok := s.pickTrack(player.Captions.Renderer.CaptionTracks)
	if !ok {
		logger.Debug().Str("video_id", videoID).Str("status", player.PlayabilityStatus.Status).
			Str("reason", player.PlayabilityStatus.Reason).Msg("no caption tracks")
		return nil, ErrNoTranscript
	}

	trackURL, err := watch.Parse(track.BaseURL)
	if err != nil {
		return nil, &Error{VideoID: videoID, Message: "invalid caption track URL", Cause: err}
	}
	logger.Debug().Str("video_id", videoID).Str("lang", track.LanguageCode).Str("kind", track.Kind).Msg("fetching captions")

	body, err := s.get(ctx, trackURL.String())
	if err != nil {
		return nil, &Error{VideoID: videoID, Message: "fetch captions", Cause: err}
	}
	segments, err := ParseTimedText(body)
	if err != nil {
		return nil, &Error{VideoID: videoID, Message: "parse captions", Cause: err}
	}
	if len(segments) == 0 {
		return nil, ErrNoTranscript
	}
	return segments, nil
}

// pickTrack prefers a manual track in the configured language order, then an
// auto-generated one, then whatever the video has.
func (s *YouTubeSource) pickTrack(tracks []captionTrack) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range s.languages {
		for _, wantASR := range []bool{false, true} {
			for _, t := range tracks {
				if (t.Kind == "asr") == wantASR && matchesLanguage(t.LanguageCode, lang) {
					return t, true
				}
			}
		}
	}
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t, true
		}
	}
	return tracks[0], true
}

func matchesLanguage(code, want string) bool {
	code, want = strings.ToLower(code), strings.ToLower(want)
	return code == want || strings.HasPrefix(code, want+"-")
}

func (s *YouTubeSource) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", strings.Join(s.languages, ","))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("response exceeds %d bytes", s.maxBody)
	}
	return body, nil
}

// parsePlayerResponse finds the inline ytInitialPlayerResponse assignment in
// the watch page and decodes the JSON object that follows it.
func parsePlayerResponse(page []byte) (*playerResponse, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, playerResponseMarker) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return &playerResponse{}, nil
	}

	rest := script[strings.Index(script, playerResponseMarker)+len(playerResponseMarker):]
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return nil, fmt.Errorf("%s has no object", playerResponseMarker)
	}

	var player playerResponse
	if err := json.NewDecoder(strings.NewReader(rest[start:])).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode %s: %w", playerResponseMarker, err)
	}
	return &player, nil
}

type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
	Paragraphs []struct {
		T    string `xml:"t,attr"`
		D    string `xml:"d,attr"`
		Body string `xml:",innerxml"`
	} `xml:"body>p"`
}

// ParseTimedText decodes a YouTube timed-text document. Both the legacy
// <transcript><text start dur> layout (seconds) and the srv3
// <timedtext><body><p t d> layout (milliseconds) are accepted. Empty lines are
// dropped.
func ParseTimedText(data []byte) ([]domain.TranscriptSegment, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	segments := make([]domain.TranscriptSegment, 0, len(doc.Texts)+len(doc.Paragraphs))
	for _, t := range doc.Texts {
		text := cleanCaption(t.Body)
		if text == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{
			Text:     text,
			Start:    seconds(t.Start),
			Duration: seconds(t.Dur),
		})
	}
	for _, p := range doc.Paragraphs {
		text := cleanCaption(stripTags(p.Body))
		if text == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{
			Text:     text,
			Start:    millis(p.T),
			Duration: millis(p.D),
		})
	}
	return segments, nil
}

// JoinText concatenates segment texts with single spaces.
func JoinText(segments []domain.TranscriptSegment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

func cleanCaption(s string) string {
	// captions are frequently entity-encoded twice
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func seconds(v string) time.Duration {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func millis(v string) time.Duration {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}
