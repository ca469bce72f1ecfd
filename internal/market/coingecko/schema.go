package coingecko

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"coinbt/internal/market"
)

// marketChartSchema 只约束顶层结构，逐条记录的校验交给 ParsePrices。
const marketChartSchema = `{
	"type": "object",
	"required": ["prices"],
	"properties": {
		"prices": {"type": "array"}
	}
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("market_chart.json", strings.NewReader(marketChartSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("market_chart.json")
	})
	return schemaCompiled, schemaErr
}

func validateBody(body []byte) error {
	if !gjson.ValidBytes(body) {
		return &market.InvalidResponseError{Source: sourceName, Reason: "body is not valid JSON"}
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &market.InvalidResponseError{Source: sourceName, Reason: "body is not valid JSON", Err: err}
	}
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return &market.InvalidResponseError{Source: sourceName, Reason: "missing prices array", Err: err}
	}
	return nil
}
