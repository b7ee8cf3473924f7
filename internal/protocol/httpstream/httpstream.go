// Package httpstream implements the plain HTTP(S) Protocol: a GET
// request streamed straight into the encoded reservoir in fixed-size
// chunks, with seek support via Range requests when the server
// advertises Accept-Ranges.
package httpstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	resty "github.com/go-resty/resty/v2"

	"github.com/arung-agamani/denpa-pipeline/internal/msg"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol"
)

// ChunkBytes is how much of the body is read per AudioEncoded message.
const ChunkBytes = 4096

type Protocol struct {
	client *resty.Client
}

func New() *Protocol {
	c := resty.New()
	c.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &Protocol{client: c}
}

func (p *Protocol) Name() string { return "http" }

func (p *Protocol) Supports(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// handler implements msg.StreamHandler for a single HTTP GET, using
// Range to seek and closing the body to stop.
type handler struct {
	p       *Protocol
	uri     string
	resp    *http.Response
	byteOff int64
}

func (h *handler) OkToPlay(streamID uint64) msg.OkToPlayStatus { return msg.OkToPlayYes }

func (h *handler) TrySeek(streamID uint64, byteOffset uint64) (flushID uint64, ok bool) {
	req := h.p.client.R()
	req.SetHeader("Range", fmt.Sprintf("bytes=%d-", byteOffset))
	resp, err := req.Get(h.uri)
	if err != nil || resp.StatusCode() != http.StatusPartialContent {
		return 0, false
	}
	h.byteOff = int64(byteOffset)
	return 1, true
}

func (h *handler) TryStop(streamID uint64) (flushID uint64, ok bool) {
	if h.resp != nil && h.resp.Body != nil {
		h.resp.Body.Close()
	}
	return 1, true
}

func (h *handler) NotifyStarving(mode string, streamID uint64) {}

func (p *Protocol) Play(ctx context.Context, uri string, sink protocol.Sink) error {
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

	h := &handler{p: p, uri: uri, resp: resp}

	total := uint64(0)
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseUint(cl, 10, 64); err == nil {
			total = n
		}
	}
	seekable := resp.Header.Get("Accept-Ranges") == "bytes"

	es := factory.NewEncodedStream(uri, total, seekable, false, h)
	if err := sink.Push(ctx, es); err != nil {
		return err
	}

	buf := make([]byte, ChunkBytes)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			am := factory.NewAudioEncoded(buf[:n])
			if perr := sink.Push(ctx, am); perr != nil {
				return perr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			slog.Warn("httpstream read error", "uri", uri, "error", rerr)
			return rerr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
