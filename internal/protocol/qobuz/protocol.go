package qobuz

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/arung-agamani/denpa-pipeline/internal/protocol"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol/httpstream"
)

// defaultFormatID is Qobuz's lossless FLAC format, used when a
// qobuz:// URI carries no explicit ?format= query.
const defaultFormatID = 6

// Protocol adapts Client to protocol.Protocol. A qobuz://track/<id>
// URI is resolved to a signed, time-limited file URL and the actual
// byte transport is delegated to an embedded httpstream.Protocol,
// mirroring how ohPipeline's ProtocolQobuz sits on top of its HTTP
// base class rather than reimplementing the GET/Range handling.
type Protocol struct {
	client *Client
	http   *httpstream.Protocol
}

func NewProtocol(appID, appSecret string) *Protocol {
	return &Protocol{client: New(appID, appSecret), http: httpstream.New()}
}

func (p *Protocol) Name() string { return "qobuz" }

func (p *Protocol) Supports(uri string) bool {
	return strings.HasPrefix(uri, "qobuz://track/")
}

// Login authenticates the underlying Client so subsequent Play calls
// carry a user auth token.
func (p *Protocol) Login(username, password string) error {
	return p.client.Login(username, password)
}

func (p *Protocol) Play(ctx context.Context, uri string, sink protocol.Sink) error {
	trackID, formatID := parseTrackURI(uri)
	fileURL, err := p.client.TrackFileURL(trackID, formatID, time.Now().Unix())
	if err != nil {
		return err
	}
	return p.http.Play(ctx, fileURL, sink)
}

func parseTrackURI(uri string) (trackID string, formatID int) {
	rest := strings.TrimPrefix(uri, "qobuz://track/")
	formatID = defaultFormatID
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		query := rest[idx+1:]
		rest = rest[:idx]
		if v, ok := strings.CutPrefix(query, "format="); ok {
			if n, err := strconv.Atoi(v); err == nil {
				formatID = n
			}
		}
	}
	return rest, formatID
}
