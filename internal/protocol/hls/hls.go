// Package hls implements enough of HTTP Live Streaming to play a
// VOD or live audio-only variant: fetch the playlist, resolve each
// segment URI (absolute or relative to the playlist's own URL), pace
// segment fetches against a token bucket so a fast VOD playlist
// doesn't hammer the origin, and reload live playlists on the
// target-duration cadence they advertise.
package hls

import (
	"bufio"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol"
)

type Protocol struct {
	limiter *rate.Limiter
}

// New paces segment fetches to at most burst requests immediately,
// then one every interval — gentle enough not to look like abuse to
// a CDN serving a live playlist.
func New() *Protocol {
	return &Protocol{limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 4)}
}

func (p *Protocol) Name() string { return "hls" }

func (p *Protocol) Supports(uri string) bool {
	return strings.HasSuffix(uri, ".m3u8") || strings.Contains(uri, ".m3u8?")
}

type segment struct {
	uri      string
	duration float64
}

type playlist struct {
	targetDuration float64
	live           bool
	segments       []segment
}

func fetch(ctx context.Context, uri string) (*playlist, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	base, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	pl := &playlist{live: true}
	sc := bufio.NewScanner(resp.Body)
	var nextDuration float64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			pl.targetDuration, _ = strconv.ParseFloat(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:"), 64)
		case strings.HasPrefix(line, "#EXT-X-ENDLIST"):
			pl.live = false
		case strings.HasPrefix(line, "#EXTINF:"):
			body := strings.TrimPrefix(line, "#EXTINF:")
			body = strings.TrimSuffix(body, ",")
			if idx := strings.Index(body, ","); idx >= 0 {
				body = body[:idx]
			}
			nextDuration, _ = strconv.ParseFloat(body, 64)
		case line == "" || strings.HasPrefix(line, "#"):
			// ignore other tags/comments
		default:
			segURI := resolve(base, line)
			pl.segments = append(pl.segments, segment{uri: segURI, duration: nextDuration})
		}
	}
	return pl, sc.Err()
}

// resolve turns a segment URI from the playlist into an absolute URL,
// honouring both absolute segment URIs and ones relative to the
// playlist's own location.
func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

func (p *Protocol) Play(ctx context.Context, uri string, sink protocol.Sink) error {
	factory := sink.Factory()

	for {
		pl, err := fetch(ctx, uri)
		if err != nil {
			return err
		}

		es := factory.NewEncodedStream(uri, 0, false, pl.live, noopHandler{})
		if err := sink.Push(ctx, es); err != nil {
			return err
		}

		for _, seg := range pl.segments {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
			if err := p.playSegment(ctx, seg.uri, sink); err != nil {
				return err
			}
		}

		if !pl.live {
			return nil
		}
		wait := time.Duration(pl.targetDuration * float64(time.Second))
		if wait <= 0 {
			wait = 5 * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (p *Protocol) playSegment(ctx context.Context, uri string, sink protocol.Sink) error {
	factory := sink.Factory()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	buf := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			am := factory.NewAudioEncoded(buf[:n])
			if perr := sink.Push(ctx, am); perr != nil {
				return perr
			}
		}
		if rerr != nil {
			break
		}
	}
	return nil
}

type noopHandler struct{}

func (noopHandler) OkToPlay(streamID uint64) msg.OkToPlayStatus { return msg.OkToPlayYes }
func (noopHandler) TrySeek(uint64, uint64) (uint64, bool)       { return 0, false }
func (noopHandler) TryStop(uint64) (uint64, bool)               { return 1, true }
func (noopHandler) NotifyStarving(mode string, streamID uint64) {}
