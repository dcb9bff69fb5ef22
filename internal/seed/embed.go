package seed

import "embed"

// bundled 随二进制发布的预置数据
//
//go:embed fixtures/*.json
var bundled embed.FS
