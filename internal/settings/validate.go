package settings

import (
	"fmt"
	"sort"
	"strings"

	"snipedash/internal/types"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError 描述一次分组校验失败，Fields 指出违规字段。
type ValidationError struct {
	Section types.Section
	Fields  []string
	Detail  string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("settings validation failed for %s: %s", e.Section, e.Detail)
	}
	return fmt.Sprintf("settings validation failed for %s (fields: %s): %s",
		e.Section, strings.Join(e.Fields, ", "), e.Detail)
}

// 每个分组一份 JSON Schema，取值范围与外部 bot 的 pydantic 模型对齐。
// allowed_dexes 的 minItems=1 同时承担"持久化时不得为空"的硬约束。
const (
	generalSchemaSrc = `{
		"type": "object",
		"properties": {
			"rpc_url": {"type": "string", "minLength": 1},
			"wallet_address": {"type": "string"},
			"telegram_enabled": {"type": "boolean"},
			"telegram_token": {"type": "string"},
			"telegram_chat_id": {"type": "string"}
		},
		"if": {
			"properties": {"telegram_enabled": {"const": true}},
			"required": ["telegram_enabled"]
		},
		"then": {
			"required": ["telegram_token", "telegram_chat_id"],
			"properties": {
				"telegram_token": {"type": "string", "minLength": 1},
				"telegram_chat_id": {"type": "string", "minLength": 1}
			}
		}
	}`

	buySchemaSrc = `{
		"type": "object",
		"properties": {
			"minimum_liquidity": {"type": "number", "minimum": 0},
			"slippage": {"type": "number", "minimum": 0.1, "maximum": 100},
			"allowed_dexes": {
				"type": "array",
				"items": {"type": "string", "minLength": 1},
				"minItems": 1,
				"uniqueItems": true
			},
			"require_verified_contract": {"type": "boolean"},
			"max_priority_fee": {"type": "number", "minimum": 0},
			"enable_antibot": {"type": "boolean"}
		},
		"required": ["minimum_liquidity", "slippage", "allowed_dexes"]
	}`

	sellSchemaSrc = `{
		"type": "object",
		"properties": {
			"target_profit": {"type": "number", "minimum": 0},
			"stop_loss": {"type": "number", "minimum": 0},
			"max_holding_time": {"type": "integer", "minimum": 1},
			"sell_on_volatility_spike": {"type": "boolean"}
		},
		"required": ["target_profit", "stop_loss", "max_holding_time"]
	}`

	riskSchemaSrc = `{
		"type": "object",
		"properties": {
			"position_size_percentage": {"type": "number", "minimum": 0.1, "maximum": 100},
			"max_open_trades": {"type": "integer", "minimum": 1},
			"cooldown_period": {"type": "integer", "minimum": 0}
		},
		"required": ["position_size_percentage", "max_open_trades", "cooldown_period"]
	}`
)

var sectionSchemas = map[types.Section]*jsonschema.Schema{
	types.SectionGeneral: jsonschema.MustCompileString("general.schema.json", generalSchemaSrc),
	types.SectionBuy:     jsonschema.MustCompileString("buy_conditions.schema.json", buySchemaSrc),
	types.SectionSell:    jsonschema.MustCompileString("sell_conditions.schema.json", sellSchemaSrc),
	types.SectionRisk:    jsonschema.MustCompileString("risk_control.schema.json", riskSchemaSrc),
}

// ValidateSection 用分组 schema 校验完整的分组文档（合并之后、持久化之前调用）。
func ValidateSection(section types.Section, doc map[string]any) error {
	schema, ok := sectionSchemas[section]
	if !ok {
		return types.ErrUnknownSection
	}
	normalized := normalizeForSchema(doc)
	if err := schema.Validate(normalized); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return &ValidationError{Section: section, Detail: err.Error()}
		}
		return &ValidationError{
			Section: section,
			Fields:  collectFields(ve),
			Detail:  ve.Error(),
		}
	}
	return nil
}

// ValidateSettings 校验整份设置（全部四个分组）。
func ValidateSettings(s *types.BotSettings) error {
	for _, section := range types.Sections() {
		doc, err := s.SectionDocument(section)
		if err != nil {
			return err
		}
		if err := ValidateSection(section, doc); err != nil {
			return err
		}
	}
	return nil
}

// collectFields 从校验错误树收集违规字段名（叶子节点）。
func collectFields(ve *jsonschema.ValidationError) []string {
	seen := map[string]struct{}{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			for _, f := range fieldsFromLeaf(e) {
				seen[f] = struct{}{}
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func fieldsFromLeaf(e *jsonschema.ValidationError) []string {
	loc := strings.TrimPrefix(e.InstanceLocation, "/")
	if loc != "" {
		// 数组元素定位如 allowed_dexes/0 只保留字段名。
		if idx := strings.Index(loc, "/"); idx > 0 {
			loc = loc[:idx]
		}
		return []string{loc}
	}
	// required 失败发生在根上，字段名在消息里以引号标出。
	var out []string
	parts := strings.Split(e.Message, "'")
	for i := 1; i < len(parts); i += 2 {
		if p := strings.TrimSpace(parts[i]); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeForSchema 把 struct 序列化产生的类型统一成 schema 校验器期望的形态。
func normalizeForSchema(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case int:
			out[k] = float64(val)
		case int64:
			out[k] = float64(val)
		case []string:
			arr := make([]any, len(val))
			for i, s := range val {
				arr[i] = s
			}
			out[k] = arr
		default:
			out[k] = v
		}
	}
	return out
}
