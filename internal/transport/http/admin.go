package http

import "net/http"

const adminPage = `<!DOCTYPE html>
<html>
<head>
    <title>Corporate AI - Admin</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 40px auto; padding: 20px; }
        h1 { color: #333; }
        .status { padding: 20px; background: #f0f0f0; border-radius: 8px; margin: 20px 0; }
        .ok { color: green; }
    </style>
</head>
<body>
    <h1>Corporate AI Admin</h1>
    <div class="status">
        <h2>System Status</h2>
        <p class="ok">✓ Agent Running</p>
        <p class="ok">✓ Kimi K2.5 Connected</p>
        <p class="ok">✓ Telegram Connected</p>
        <p class="ok">✓ Database Connected</p>
    </div>
    <div class="status">
        <h2>Quick Links</h2>
        <p><a href="/status">System Status (JSON)</a></p>
    </div>
</body>
</html>`

func (s *Server) handleAdmin(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(adminPage))
}
