package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute はルートコマンドを実行し、標準出力と実行結果を返す。
func execute(t *testing.T, now time.Time, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	clock := time.Now
	if !now.IsZero() {
		clock = func() time.Time { return now }
	}
	root := newRootCommand(&stdout, &stderr, clock)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "flavors", "status", "hours", "location", "healthcheck"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestFlavorsCommand_Found(t *testing.T) {
	newCalendarServer(t)

	out, err := execute(t, time.Time{}, "flavors", "--date", "2017-05-29")
	require.NoError(t, err)
	assert.Equal(t, "FLAVORS 2017-05-29: Banana Pudding and Mint Chip\n", out)
}

func TestFlavorsCommand_Closed(t *testing.T) {
	newCalendarServer(t)

	out, err := execute(t, time.Time{}, "flavors", "--date", "2017-05-30")
	require.NoError(t, err)
	assert.Contains(t, out, "CLOSED The shop is closed on 2017-05-30.")
}

func TestFlavorsCommand_NotFound(t *testing.T) {
	newCalendarServer(t)

	out, err := execute(t, time.Time{}, "flavors", "--date", "2017-06-15")
	require.NoError(t, err)
	assert.Contains(t, out, "No flavor forecast for 2017-06-15.")
}

func TestFlavorsCommand_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	t.Setenv("FLAVORCAST_CALENDAR_URL", srv.URL+"/")
	t.Setenv("FLAVORCAST_SAFE_FETCH", "false")

	out, err := execute(t, time.Time{}, "flavors", "--date", "2017-05-29")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport failure")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "kind: network_failure")
}

func TestFlavorsCommand_InvalidDate(t *testing.T) {
	_, err := execute(t, time.Time{}, "flavors", "--date", "05/29/2017")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --date")
}

func TestStatusCommand_Open(t *testing.T) {
	out, err := execute(t, time.Time{}, "status", "--at", "2017-05-29T14:30:00-04:00")
	require.NoError(t, err)
	assert.Contains(t, out, "The Dairy Godmother is OPEN. It closes in 6 hours and 30 minutes.")
	assert.Contains(t, out, "as of 2017-05-29T18:30:00Z")
}

func TestStatusCommand_ClosedUsesClock(t *testing.T) {
	out, err := execute(t, time.Date(2017, 5, 29, 15, 0, 0, 0, time.UTC), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "is CLOSED. It opens in 1 hour.")
}

func TestStatusCommand_InvalidAt(t *testing.T) {
	_, err := execute(t, time.Time{}, "status", "--at", "noon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")
}

func TestHoursCommand_PrintsWeeklyTable(t *testing.T) {
	out, err := execute(t, time.Date(2017, 5, 31, 12, 0, 0, 0, time.UTC), "hours")
	require.NoError(t, err)

	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Sunday"} {
		assert.Contains(t, out, day)
	}
	assert.Equal(t, 1, strings.Count(out, "today"))
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Wednesday") {
			assert.Contains(t, line, "today")
			assert.Contains(t, line, "10 PM")
		}
		if strings.Contains(line, "Monday") {
			assert.Contains(t, line, "9 PM")
		}
	}
}

func TestLocationCommand(t *testing.T) {
	t.Setenv("FLAVORCAST_SHOP_NAME", "Test Creamery")

	out, err := execute(t, time.Time{}, "location")
	require.NoError(t, err)
	assert.Equal(t, "Test Creamery\n2310 Mount Vernon Ave., Alexandria, VA 22301\n", out)
}

func TestHealthcheckCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := execute(t, time.Time{}, "healthcheck", "--url", srv.URL)
	assert.NoError(t, err)
}

func TestParseDateFlag_DefaultsToUTCToday(t *testing.T) {
	local := time.FixedZone("EDT", -4*3600)
	now := func() time.Time { return time.Date(2017, 5, 29, 22, 30, 0, 0, local) }

	day, err := parseDateFlag("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 5, 30, 0, 0, 0, 0, time.UTC), day)
}
