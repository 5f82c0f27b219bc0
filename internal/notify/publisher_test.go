package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devscast/siteconf/internal/config"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/linkcheck"
)

type fakeConn struct {
	subjects   []string
	payloads   [][]byte
	publishErr error
	flushErr   error
	closed     bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func sampleIssue() linkcheck.Issue {
	return linkcheck.Issue{
		Kind:     linkcheck.KindBrokenLink,
		Severity: config.SeverityThrow,
		Locale:   "fr",
		Source:   "theme_config.navbar.items[2]",
		Target:   "/news",
		Resolved: "/fr/news",
		Message:  "link target does not match any route",
	}
}

func TestNewBrokenLinkEvent(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	ev := NewBrokenLinkEvent("run-9", "Devscast Engineering", "https://engineering.devscast.tech", sampleIssue(), now)

	require.Equal(t, "broken_link", ev.Kind)
	require.Equal(t, "throw", ev.Severity)
	require.Equal(t, "/fr/news", ev.Resolved)
	require.Equal(t, "fr", ev.Locale)
	require.Equal(t, "run-9", ev.RunID)
	require.Equal(t, now, ev.Timestamp)
}

func TestNATSPublisher_PublishesJSONOnSubject(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn)
	ev := NewBrokenLinkEvent("run-1", "Site", "https://example.com", sampleIssue(), time.Time{})

	require.NoError(t, p.PublishBrokenLink(t.Context(), ev))
	require.Equal(t, []string{DefaultSubject}, conn.subjects)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	require.Equal(t, "/news", decoded["target"])
	require.Equal(t, "theme_config.navbar.items[2]", decoded["source"])
	require.False(t, ev.Timestamp.IsZero(), "timestamp is stamped on publish")

	require.NoError(t, p.Close())
	require.True(t, conn.closed)
}

func TestNATSPublisher_CustomSubject(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, WithSubject("docs.alerts"))
	require.Equal(t, "docs.alerts", p.Subject())
	require.NoError(t, p.PublishBrokenLink(t.Context(), &BrokenLinkEvent{Target: "/x"}))
	require.Equal(t, []string{"docs.alerts"}, conn.subjects)
}

func TestNATSPublisher_Errors(t *testing.T) {
	p := newNATSPublisher(&fakeConn{publishErr: errors.New("nats: connection closed")})
	err := p.PublishBrokenLink(t.Context(), &BrokenLinkEvent{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))

	p = newNATSPublisher(&fakeConn{flushErr: context.DeadlineExceeded})
	err = p.PublishBrokenLink(t.Context(), &BrokenLinkEvent{})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.PublishBrokenLink(t.Context(), &BrokenLinkEvent{}))
	require.NoError(t, p.Close())
}

var _ Publisher = (*NATSPublisher)(nil)
