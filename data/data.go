// Package data содержит снимок коллекций по умолчанию (формат экспорта MongoDB).
package data

import _ "embed"

//go:embed wrappers-export.json
var WrappersExport []byte

//go:embed admins-export.json
var AdminsExport []byte
