// Package api serves the embedded OpenAPI document of the payments API.
package api

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

var loadSwagger = sync.OnceValues(func() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	return doc, nil
})

// GetSwagger returns the parsed OpenAPI document. It is parsed once.
func GetSwagger() (*openapi3.T, error) {
	return loadSwagger()
}
