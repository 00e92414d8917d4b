package server

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var embedFS embed.FS

// StaticFS は静的アセットのファイルシステムを返す
func StaticFS() http.FileSystem {
	staticFS, err := fs.Sub(embedFS, "static")
	if err != nil {
		// go:embed の static は常に存在するため、ここに到達したらビルド不整合
		panic(err)
	}
	return http.FS(staticFS)
}
