package dataset

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"scrolly/internal/record"
	"scrolly/internal/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `[
  {"level":"state","metric":"lost_colonies","region":"US","period":"2015 Q1","period_index":0,"value":"1000"},
  {"level":"state","metric":"lost_colonies","region":"US","period":"2015 Q2","period_index":1,"value":""},
  {"level":"state","metric":"lost_colonies","region":"US","period":"2015 Q3","period_index":2,"value":1200.5},
  {"level":"state","metric":"max_colonies","period_index":null,"value":3},
  42
]`

func TestDecodeJSON(t *testing.T) {
	rows, err := DecodeJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, rows, 4, "non-object elements are skipped")

	assert.Equal(t, "1000", rows[0].Value)
	assert.Equal(t, json.Number("0"), rows[0].PeriodIndex)
	assert.Equal(t, json.Number("1200.5"), rows[2].Value)
	assert.Nil(t, rows[3].PeriodIndex)
	assert.Nil(t, rows[3].Region, "missing field stays absent")

	ix := series.Build(record.NormalizeAll(rows))
	assert.Equal(t, series.Series{{PeriodIndex: 0, Value: 1000}, {PeriodIndex: 2, Value: 1200.5}},
		ix.Query("state", "lost_colonies"))
}

func TestDecodeJSONRejectsBadRoot(t *testing.T) {
	cases := map[string]string{
		"invalid":    `[{"level":`,
		"object":     `{"rows":[]}`,
		"scalar":     `"hello"`,
		"empty body": ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	data := "\xef\xbb\xbfLevel, Metric ,Region,Period,Period Index,Value\n" +
		"state,lost_colonies,US,2015 Q1,0,1000\n" +
		"state,lost_colonies,US,2015 Q2,1,NA\n" +
		"state,lost_colonies\n"
	rows, err := DecodeCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "state", rows[0].Level)
	assert.Equal(t, "0", rows[0].PeriodIndex)
	assert.Equal(t, "NA", rows[1].Value)
	assert.Nil(t, rows[2].Value, "short rows leave trailing columns absent")

	clean := record.NormalizeAll(rows)
	assert.False(t, clean[1].Value.Valid())
}

func TestDecodeCSVMissingHeader(t *testing.T) {
	_, err := DecodeCSV(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestExportRoundTrip(t *testing.T) {
	want := series.Series{{PeriodIndex: 0, Value: 10}, {PeriodIndex: 1, Value: 12.5}, {PeriodIndex: 3, Value: 9}}
	var buf bytes.Buffer
	require.NoError(t, WriteSeriesXLSX(&buf, "state", "lost_colonies", want))

	rows, err := DecodeXLSX(buf.Bytes())
	require.NoError(t, err)
	ix := series.Build(record.NormalizeAll(rows))
	assert.Equal(t, want, ix.Query("state", "lost_colonies"))
}

func TestDecodeXLSXGarbage(t *testing.T) {
	_, err := DecodeXLSX([]byte("not a zip"))
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	src, err := Open(Config{Kind: KindFile, Path: path})
	require.NoError(t, err)
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	t.Run("missing file is a load error", func(t *testing.T) {
		src, err := NewFileSource(filepath.Join(dir, "gone.json"), "")
		require.NoError(t, err)
		_, err = src.Load(context.Background())
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Contains(t, le.Source, "gone.json")
		assert.NotEmpty(t, le.Detail())
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(dir, "rows.parquet"), "")
		assert.Error(t, err)
	})
}

func TestOpenValidation(t *testing.T) {
	_, err := Open(Config{Kind: "ftp"})
	assert.Error(t, err)
	_, err = Open(Config{Kind: KindHTTP})
	assert.Error(t, err)
	_, err = Open(Config{Kind: KindSQLite, Path: "x.db", Table: "records; drop table x"})
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rows":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write([]byte(sampleJSON))
		case "/rows.csv":
			_, _ = w.Write([]byte("level,metric,period_index,value\nstate,m,0,1\n"))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Run("content type", func(t *testing.T) {
		rows, err := NewHTTPSource(srv.URL+"/rows", "", time.Second).Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})
	t.Run("extension", func(t *testing.T) {
		rows, err := NewHTTPSource(srv.URL+"/rows.csv", "", time.Second).Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
	t.Run("status", func(t *testing.T) {
		_, err := NewHTTPSource(srv.URL+"/missing.json", "", time.Second).Load(context.Background())
		var le *LoadError
		require.True(t, errors.As(err, &le))
		assert.Contains(t, le.Detail(), "404")
	})
}

func TestSQLiteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE records (level TEXT, metric TEXT, region TEXT, period TEXT, period_index INTEGER, value REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO records VALUES
		('State','Lost_Colonies','US','2015 Q1',1,20.5),
		('state','lost_colonies','US','2015 Q0',0,10),
		('state','lost_colonies','US','2015 Q2',2,NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := Open(Config{Kind: KindSQLite, Path: path, Table: "records"})
	require.NoError(t, err)
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	ix := series.Build(record.NormalizeAll(rows))
	assert.Equal(t, series.Series{{PeriodIndex: 0, Value: 10}, {PeriodIndex: 1, Value: 20.5}},
		ix.Query("state", "lost_colonies"))

	t.Run("missing table", func(t *testing.T) {
		src, err := NewSQLiteSource(path, "nothing")
		require.NoError(t, err)
		_, err = src.Load(context.Background())
		var le *LoadError
		assert.True(t, errors.As(err, &le))
	})
}

func TestReloaderCoalesces(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := NewReloader(func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Reload(context.Background()))
		}()
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	var calls atomic.Int32
	w := NewWatcher(path, 20*time.Millisecond, NewReloader(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
