package loader

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
)

func startServer(t *testing.T, handler fasthttp.RequestHandler) *fasthttputil.InmemoryListener {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	s := &fasthttp.Server{Handler: handler}
	go func() {
		_ = s.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
	})
	return ln
}

func newTestHTTP(t *testing.T, handler fasthttp.RequestHandler) *HTTP {
	t.Helper()

	ln := startServer(t, handler)
	l := NewHTTP(zap.NewNop(), 5*time.Second, "pscss-test", "")
	l.client.Dial = func(addr string) (net.Conn, error) {
		return ln.Dial()
	}
	return l
}

func TestHTTP_Load(t *testing.T) {
	var agent string
	l := newTestHTTP(t, func(ctx *fasthttp.RequestCtx) {
		agent = string(ctx.UserAgent())
		switch string(ctx.Path()) {
		case "/css/a.pscss":
			ctx.SetContentType("text/css")
			ctx.WriteString("a { x: 1; }")
		case "/css/cp.pscss":
			ctx.SetContentType("text/css; charset=windows-1251")
			ctx.Write([]byte{0xCF, 0xF0, 0xE8})
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	got, err := l.Load("http://example.test/css/a.pscss")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "a { x: 1; }" {
		t.Errorf("Load() = %q", got)
	}
	if agent != "pscss-test" {
		t.Errorf("User-Agent = %q, want pscss-test", agent)
	}

	got, err = l.Load("http://example.test/css/cp.pscss")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "При" {
		t.Errorf("Load() = %q, want При", got)
	}

	_, err = l.Load("http://example.test/css/missing.pscss")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Load() error = %v, want status 404", err)
	}
}

func TestHTTP_Timeout(t *testing.T) {
	l := newTestHTTP(t, func(ctx *fasthttp.RequestCtx) {
		time.Sleep(200 * time.Millisecond)
		ctx.WriteString("late")
	})
	l.timeout = 20 * time.Millisecond

	if _, err := l.Load("http://example.test/slow.pscss"); err == nil {
		t.Error("Expected timeout error")
	}
}
