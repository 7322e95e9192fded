// Package docs provides generated OpenAPI documentation.
//
// Tagsheet API
//
//	@title			Tagsheet API
//	@version		1.0
//	@description	P&ID tag extraction and tag sheet generation.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/tagsheet
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

import _ "embed"

//go:generate swag init -g ../cmd/tagsheet/serve.go -o ./swagger --parseDependency --parseInternal

// SwaggerJSON is the generated OpenAPI document served at /swagger.json.
//
//go:embed swagger/swagger.json
var SwaggerJSON []byte
