package bookmark

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/exchange"
	"tableflip.dev/barswitch/pkg/store"
	"tableflip.dev/barswitch/pkg/tree/treetest"
)

func TestBookmarksTravelWithTheirBar(t *testing.T) {
	ctx := context.Background()
	color.NoColor = true
	svc := app.New(app.Options{
		Tree:         treetest.New(),
		Local:        store.NewMemoryTier(),
		Synced:       store.NewMemoryTier(),
		DefaultTitle: "home",
	})
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.Init(ctx))
	work, err := svc.Add(ctx, "work")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, (&Add{Service: svc, Title: "news", URL: "https://news.example", Out: &out}).Do(ctx))
	assert.Equal(t, "[added] news to home\n", out.String())
	require.NoError(t, (&Add{Service: svc, Bar: "work", Title: "ci", URL: "https://ci.example", Out: &out}).Do(ctx))

	_, err = svc.Exchange(ctx, exchange.Ref{ID: work.ID, Title: work.Title})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, (&List{Service: svc, Out: &out}).Do(ctx))
	assert.Contains(t, out.String(), "ci")
	assert.NotContains(t, out.String(), "news")

	out.Reset()
	require.NoError(t, (&List{Service: svc, Bar: "home", Out: &out}).Do(ctx))
	assert.Contains(t, out.String(), "news")
}

func TestAddRequiresURL(t *testing.T) {
	svc := app.New(app.Options{
		Tree:   treetest.New(),
		Local:  store.NewMemoryTier(),
		Synced: store.NewMemoryTier(),
	})
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.Init(context.Background()))
	assert.Error(t, (&Add{Service: svc, Title: "x", Out: &bytes.Buffer{}}).Do(context.Background()))
}
