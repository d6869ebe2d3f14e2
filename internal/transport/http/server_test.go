package httptransport

import (
	"net/http"
	"testing"
	"time"
)

func TestNewServerAppliesDefaults(t *testing.T) {
	server := NewServer(ServerConfig{Address: ":9090"}, http.NewServeMux())

	if server.Addr != ":9090" {
		t.Fatalf("unexpected address %s", server.Addr)
	}
	if server.ReadHeaderTimeout != 2*time.Second {
		t.Fatalf("unexpected read header timeout %v", server.ReadHeaderTimeout)
	}
	if server.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected read timeout %v", server.ReadTimeout)
	}
	if server.WriteTimeout != 10*time.Second {
		t.Fatalf("unexpected write timeout %v", server.WriteTimeout)
	}
	if server.IdleTimeout != 60*time.Second {
		t.Fatalf("unexpected idle timeout %v", server.IdleTimeout)
	}
}

func TestNewServerKeepsExplicitTimeouts(t *testing.T) {
	server := NewServer(ServerConfig{
		Address:           ":9090",
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       3 * time.Second,
		WriteTimeout:      4 * time.Second,
		IdleTimeout:       30 * time.Second,
	}, http.NewServeMux())

	if server.ReadHeaderTimeout != time.Second || server.ReadTimeout != 3*time.Second ||
		server.WriteTimeout != 4*time.Second || server.IdleTimeout != 30*time.Second {
		t.Fatalf("explicit timeouts overridden: %+v", server)
	}
}
