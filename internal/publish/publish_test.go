package publish

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Map(t *testing.T) {
	t.Parallel()

	doc := Document{Page: "App", Provider: "react", Source: "export class App {}"}
	assert.Equal(t, map[string]any{
		"page":     "App",
		"provider": "react",
		"source":   "export class App {}",
	}, doc.Map())

	doc.Path = "out/App.tsx"
	assert.Equal(t, "out/App.tsx", doc.Map()["path"])
}

func TestFunc_Publisher(t *testing.T) {
	t.Parallel()

	var got []Document
	var p Publisher = Func(func(_ context.Context, doc Document) error {
		got = append(got, doc)
		return nil
	})

	require.NoError(t, p.Publish(context.Background(), Document{Page: "A"}))
	require.NoError(t, p.Close())
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Page)
}

func TestDial_InvalidURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		url  string
	}{
		{name: "relative", url: "/socket.io"},
		{name: "unparsable", url: "http://[::1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Dial(context.Background(), Config{URL: tc.url})
			require.Error(t, err)
		})
	}
}

func TestDial_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing listens on port 1, and the cancelled context or the connect
	// error wins well before the timeout.
	_, err := Dial(ctx, Config{URL: "http://127.0.0.1:1", ConnectTimeout: 5 * time.Second})
	require.Error(t, err)
}
