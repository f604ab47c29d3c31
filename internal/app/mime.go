package app

import (
	"log/slog"
	"mime"
)

// assetTypes covers what the SPA build emits. Minimal containers often ship
// without /etc/mime.types, which leaves these unresolved.
var assetTypes = map[string]string{
	".css":         "text/css; charset=utf-8",
	".js":          "text/javascript; charset=utf-8",
	".mjs":         "text/javascript; charset=utf-8",
	".map":         "application/json",
	".svg":         "image/svg+xml",
	".woff2":       "font/woff2",
	".webmanifest": "application/manifest+json",
}

func init() {
	for ext, typ := range assetTypes {
		if mime.TypeByExtension(ext) != "" {
			continue
		}
		if err := mime.AddExtensionType(ext, typ); err != nil {
			slog.Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
		}
	}
}
