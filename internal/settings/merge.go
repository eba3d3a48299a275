package settings

import "snipedash/internal/types"

// MergeSection 将 patch 浅合并进 current 指定分组，返回合并后的整份设置。
// 纯函数：不做 I/O，不修改 current，未涉及的分组逐字节保持不变。
// patch 中未出现的字段保留 current 的既有值（合并而非替换）。
func MergeSection(current *types.BotSettings, section types.Section, patch map[string]any) (*types.BotSettings, error) {
	out := current.Clone()
	if out == nil {
		out = &types.BotSettings{}
	}
	doc, err := out.SectionDocument(section)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		doc[k] = v
	}
	if err := out.SetSectionDocument(section, doc); err != nil {
		return nil, err
	}
	return out, nil
}
