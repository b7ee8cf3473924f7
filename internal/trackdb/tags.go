package trackdb

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// ResolveMetadata returns metadata unchanged unless it's empty and uri
// points at a local file, in which case it reads the file's ID3/FLAC/
// MP4 tags and formats them into a display string. Callers that don't
// have metadata up front (the control API's playlist insert route, a
// startup --url flag) use this so a bare local path still shows a
// sensible track name instead of the raw URI.
func ResolveMetadata(uri, metadata string) string {
	if metadata != "" {
		return metadata
	}
	path, ok := localFilePath(uri)
	if !ok {
		return metadata
	}
	f, err := os.Open(path)
	if err != nil {
		return metadata
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return metadata
	}
	return formatTags(m)
}

func localFilePath(uri string) (string, bool) {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
		return path, true
	}
	if strings.Contains(uri, "://") {
		return "", false
	}
	return uri, true
}

func formatTags(m tag.Metadata) string {
	title := m.Title()
	if title == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(title)
	if artist := m.Artist(); artist != "" {
		fmt.Fprintf(&b, " - %s", artist)
	}
	if album := m.Album(); album != "" {
		fmt.Fprintf(&b, " (%s)", album)
	}
	return b.String()
}
