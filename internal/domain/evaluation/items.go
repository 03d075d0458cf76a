// Package evaluation turns a construction evaluation grid into project records.
//
// The grid follows the fixed layout of the 工事成績評定通知書 breakdown sheet:
// one project per pair of columns starting at column E, header rows for the
// date and project name, one row per evaluation item and a total row.
package evaluation

// ItemDefinition describes one evaluation item row of the sheet.
type ItemDefinition struct {
	RowIndex int     `json:"rowIndex"`
	Category string  `json:"category"`
	Item     string  `json:"item"`
	MaxScore float64 `json:"maxScore"`
}

// items is ordered by RowIndex and never modified.
var items = [...]ItemDefinition{
	{RowIndex: 8, Category: "1. 施工体制", Item: "I.施工体制一般", MaxScore: 3.3},
	{RowIndex: 9, Category: "1. 施工体制", Item: "II.配置技術者", MaxScore: 4.1},
	{RowIndex: 10, Category: "2. 施工状況", Item: "I.施工管理", MaxScore: 13},
	{RowIndex: 11, Category: "2. 施工状況", Item: "II.工程管理", MaxScore: 8.1},
	{RowIndex: 12, Category: "2. 施工状況", Item: "III.安全対策", MaxScore: 8.8},
	{RowIndex: 13, Category: "2. 施工状況", Item: "IV.対外関係", MaxScore: 3.7},
	{RowIndex: 14, Category: "3. 出来形・品質・出来ばえ", Item: "I.出来形", MaxScore: 14.9},
	{RowIndex: 15, Category: "3. 出来形・品質・出来ばえ", Item: "II.品質", MaxScore: 17.4},
	{RowIndex: 16, Category: "3. 出来形・品質・出来ばえ", Item: "III.出来ばえ", MaxScore: 8.5},
	{RowIndex: 17, Category: "4. 工事特性（加点）", Item: "施工条件等への対応", MaxScore: 7.3},
	{RowIndex: 18, Category: "5. 創意工夫（加点）", Item: "創意工夫", MaxScore: 5.7},
	{RowIndex: 19, Category: "6. 社会性等（加点）", Item: "地域への貢献等", MaxScore: 5.2},
	{RowIndex: 20, Category: "7. 法令遵守等（減点）", Item: "工事事故等による減点", MaxScore: 0},
}

// ItemCount is the number of evaluation items on the sheet.
const ItemCount = len(items)

// Items returns a copy of the evaluation item definitions in row order.
func Items() []ItemDefinition {
	out := make([]ItemDefinition, ItemCount)
	copy(out, items[:])
	return out
}

// Categories returns the distinct category labels in row order.
func Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}
