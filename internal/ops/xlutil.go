package ops

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// sheetExists 判断工作表是否存在
func sheetExists(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// requireSheet 工作表不存在时返回校验错误
func requireSheet(f *excelize.File, name string) error {
	if !sheetExists(f, name) {
		return core.Validationf("Sheet '%s' not found", name)
	}
	return nil
}

// ensureSheet 工作表不存在时创建
func ensureSheet(f *excelize.File, name string) error {
	if sheetExists(f, name) {
		return nil
	}
	if _, err := f.NewSheet(name); err != nil {
		return core.Internalf(err, "failed to create sheet %s", name)
	}
	return nil
}

// parseCell 解析单元格引用为 (列, 行)，1 起始
func parseCell(cell string) (int, int, error) {
	col, row, err := excelize.CellNameToCoordinates(strings.ToUpper(strings.TrimSpace(cell)))
	if err != nil {
		return 0, 0, core.Validationf("invalid cell reference %q: %v", cell, err)
	}
	return col, row, nil
}

// parseRange 解析 "A1:B5" 为左上/右下坐标；接受单个单元格
func parseRange(rangeRef string) (c1, r1, c2, r2 int, err error) {
	parts := strings.SplitN(strings.TrimSpace(rangeRef), ":", 2)
	c1, r1, err = parseCell(parts[0])
	if err != nil {
		return
	}
	if len(parts) == 1 {
		c2, r2 = c1, r1
		return
	}
	c2, r2, err = parseCell(parts[1])
	if err != nil {
		return
	}
	if c2 < c1 || r2 < r1 {
		err = core.Validationf("invalid range %q: end cell precedes start cell", rangeRef)
	}
	return
}

// splitRange 把 "A1:B5" 拆为两个单元格名；单个单元格时首尾相同
func splitRange(rangeRef string) (string, string, error) {
	c1, r1, c2, r2, err := parseRange(rangeRef)
	if err != nil {
		return "", "", err
	}
	start, err := excelize.CoordinatesToCellName(c1, r1)
	if err != nil {
		return "", "", core.Internalf(err, "invalid coordinates")
	}
	end, err := excelize.CoordinatesToCellName(c2, r2)
	if err != nil {
		return "", "", core.Internalf(err, "invalid coordinates")
	}
	return start, end, nil
}

// absRangeRef 构造带 $ 的绝对引用（命名区域使用）
func absRangeRef(sheet, rangeRef string) (string, error) {
	c1, r1, c2, r2, err := parseRange(rangeRef)
	if err != nil {
		return "", err
	}
	start, err := excelize.CoordinatesToCellName(c1, r1, true)
	if err != nil {
		return "", core.Internalf(err, "invalid coordinates")
	}
	end, err := excelize.CoordinatesToCellName(c2, r2, true)
	if err != nil {
		return "", core.Internalf(err, "invalid coordinates")
	}
	return "'" + sheet + "'!" + start + ":" + end, nil
}

// usedRange 返回工作表已用区域的行列数（基于 GetRows 的结果）
func usedRange(rows [][]string) (maxRow, maxCol int) {
	maxRow = len(rows)
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	return
}

// openExisting 校验路径并从缓存取句柄，要求文件已存在
func openExisting(env *Env, args Args) (*excelize.File, string, []string, error) {
	path, warns, err := env.Sandbox.Validate(args.String("filepath", ""), false)
	if err != nil {
		return nil, "", nil, err
	}
	f, err := env.Cache.GetOrLoad(path, false)
	if err != nil {
		return nil, "", nil, err
	}
	return f, path, warns, nil
}

// save 持文件锁保存并使缓存失效
func save(env *Env, f *excelize.File, path string) error {
	return core.SaveWorkbook(env.Cache, env.Locks, f, path)
}
