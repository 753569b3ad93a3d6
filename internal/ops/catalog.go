package ops

// registerAll 注册全部操作与历史别名
// 规范名用 组-动作 的连字符形式；下划线形式由 register 自动登记
func (r *Registry) registerAll() {
	// 工作簿
	r.register(Spec{
		Name: "workbook-create", Group: "workbook",
		Description: "Create a new workbook at the given path",
		Required:    []string{"filepath"},
		Optional:    []string{"sheet_name"},
		Handler:     createWorkbook,
	})
	r.register(Spec{
		Name: "workbook-metadata", Group: "workbook",
		Description: "Report sheets and used ranges of a workbook",
		Required:    []string{"filepath"},
		Handler:     workbookMetadata,
	})

	// 工作表
	r.register(Spec{
		Name: "worksheet-create", Group: "worksheet",
		Description: "Add a worksheet to an existing workbook",
		Required:    []string{"filepath", "sheet_name"},
		Handler:     createWorksheet,
	})
	r.register(Spec{
		Name: "worksheet-delete", Group: "worksheet",
		Description: "Delete a worksheet; the last sheet cannot be removed",
		Required:    []string{"filepath", "sheet_name"},
		Handler:     deleteWorksheet,
	})
	r.register(Spec{
		Name: "worksheet-rename", Group: "worksheet",
		Description: "Rename a worksheet",
		Required:    []string{"filepath", "sheet_name", "new_name"},
		Handler:     renameWorksheet,
	})
	r.register(Spec{
		Name: "worksheet-copy", Group: "worksheet",
		Description: "Duplicate a worksheet within the same workbook",
		Required:    []string{"filepath", "sheet_name", "new_name"},
		Handler:     copyWorksheet,
	})

	// 数据
	r.register(Spec{
		Name: "data-write", Group: "data",
		Description: "Write a 2D grid of values starting at a cell",
		Required:    []string{"filepath", "data"},
		Optional:    []string{"sheet_name", "start_cell"},
		Handler:     writeData,
	})
	r.register(Spec{
		Name: "data-read", Group: "data",
		Description: "Read a range (or the used range) as a 2D grid",
		Required:    []string{"filepath"},
		Optional:    []string{"sheet_name", "start_cell", "end_cell"},
		Handler:     readData,
	})
	r.register(Spec{
		Name: "cell-write", Group: "data",
		Description: "Write a single cell value",
		Required:    []string{"filepath", "cell", "value"},
		Optional:    []string{"sheet_name"},
		Handler:     writeCell,
	})
	r.register(Spec{
		Name: "cell-read", Group: "data",
		Description: "Read a single cell value",
		Required:    []string{"filepath", "cell"},
		Optional:    []string{"sheet_name"},
		Handler:     readCell,
	})
	r.register(Spec{
		Name: "find-replace", Group: "data",
		Description: "Find and replace text across a range or the whole sheet",
		Required:    []string{"filepath", "find_text", "replace_text"},
		Optional:    []string{"sheet_name", "range", "match_case", "match_entire_cell"},
		Handler:     findReplace,
	})
	r.register(Spec{
		Name: "sort-range", Group: "data",
		Description: "Sort a range by one or more key columns",
		Required:    []string{"filepath", "range"},
		Optional:    []string{"sheet_name", "sort_by", "ascending"},
		Handler:     sortRange,
	})
	r.register(Spec{
		Name: "data-analyze", Group: "data",
		Description: "Descriptive, correlation or trend statistics over a range",
		Required:    []string{"filepath", "range"},
		Optional:    []string{"sheet_name", "analysis_type"},
		Handler:     analyzeData,
	})

	// 公式
	r.register(Spec{
		Name: "formula-apply", Group: "formula",
		Description: "Validate and write a formula into a cell",
		Required:    []string{"filepath", "cell", "formula"},
		Optional:    []string{"sheet_name"},
		Handler:     applyFormula,
	})
	r.register(Spec{
		Name: "formula-validate", Group: "formula",
		Description: "Check formula syntax without touching any file",
		Required:    []string{"formula"},
		Handler:     validateFormula,
	})

	// 格式
	r.register(Spec{
		Name: "format-range", Group: "format",
		Description: "Apply basic formatting (bold, fill) to a range",
		Required:    []string{"filepath", "start_cell", "end_cell"},
		Optional:    []string{"sheet_name", "bold", "fill_color"},
		Handler:     formatRange,
	})
	r.register(Spec{
		Name: "format-advanced", Group: "format",
		Description: "Apply font, fill, border, alignment and number formats",
		Required:    []string{"filepath", "range", "formatting"},
		Optional:    []string{"sheet_name"},
		Handler:     formatAdvanced,
	})
	r.register(Spec{
		Name: "format-conditional", Group: "format",
		Description: "Add a conditional formatting rule to a range",
		Required:    []string{"filepath", "range", "rule_type", "condition"},
		Optional:    []string{"sheet_name", "format"},
		Handler:     formatConditional,
	})
	r.register(Spec{
		Name: "range-merge", Group: "format",
		Description: "Merge a cell range",
		Required:    []string{"filepath", "range"},
		Optional:    []string{"sheet_name"},
		Handler:     mergeRange,
	})
	r.register(Spec{
		Name: "range-unmerge", Group: "format",
		Description: "Unmerge a previously merged range",
		Required:    []string{"filepath", "range"},
		Optional:    []string{"sheet_name"},
		Handler:     unmergeRange,
	})

	// 图表
	r.register(Spec{
		Name: "chart-create", Group: "chart",
		Description: "Create a chart from a data range",
		Required:    []string{"filepath", "data_range", "target_cell"},
		Optional:    []string{"sheet_name", "chart_type", "title"},
		Handler:     createChart,
	})
	r.register(Spec{
		Name: "sparkline-add", Group: "chart",
		Description: "Add a sparkline showing a data range in a single cell",
		Required:    []string{"filepath", "data_range", "location"},
		Optional:    []string{"sheet_name", "sparkline_type", "markers"},
		Handler:     addSparkline,
	})

	// 表格
	r.register(Spec{
		Name: "table-create", Group: "table",
		Description: "Define a range as an Excel table",
		Required:    []string{"filepath", "data_range"},
		Optional:    []string{"sheet_name", "table_name", "table_style"},
		Handler:     createTable,
	})
	r.register(Spec{
		Name: "pivot-create", Group: "table",
		Description: "Create a pivot table from a data range",
		Required:    []string{"filepath", "data_range", "rows", "values"},
		Optional:    []string{"sheet_name", "columns", "agg_func", "target_sheet"},
		Handler:     createPivot,
	})
	r.register(Spec{
		Name: "filter-apply", Group: "table",
		Description: "Enable auto-filter on a range, optionally with criteria",
		Required:    []string{"filepath", "range"},
		Optional:    []string{"sheet_name", "criteria"},
		Handler:     applyFilter,
	})

	// 行列
	r.register(Spec{
		Name: "rows-insert", Group: "rowcol",
		Description: "Insert rows before a given row",
		Required:    []string{"filepath", "start_row"},
		Optional:    []string{"sheet_name", "count"},
		Handler:     insertRows,
	})
	r.register(Spec{
		Name: "rows-delete", Group: "rowcol",
		Description: "Delete rows starting at a given row",
		Required:    []string{"filepath", "start_row"},
		Optional:    []string{"sheet_name", "count"},
		Handler:     deleteRows,
	})
	r.register(Spec{
		Name: "columns-insert", Group: "rowcol",
		Description: "Insert columns before a given column",
		Required:    []string{"filepath", "start_column"},
		Optional:    []string{"sheet_name", "count"},
		Handler:     insertColumns,
	})
	r.register(Spec{
		Name: "columns-delete", Group: "rowcol",
		Description: "Delete columns starting at a given column",
		Required:    []string{"filepath", "start_column"},
		Optional:    []string{"sheet_name", "count"},
		Handler:     deleteColumns,
	})

	// 验证与保护
	r.register(Spec{
		Name: "validation-add", Group: "validation",
		Description: "Add a data validation rule to a range",
		Required:    []string{"filepath", "range"},
		Optional:    []string{"sheet_name", "validation_type", "options", "operator", "minimum", "maximum", "error_title", "error_message", "prompt_title", "prompt_message"},
		Handler:     addValidation,
	})
	r.register(Spec{
		Name: "protection-add", Group: "validation",
		Description: "Protect a worksheet, optionally leaving ranges editable",
		Required:    []string{"filepath", "sheet_name"},
		Optional:    []string{"password", "unlocked_ranges", "allow_format", "allow_insert_rows", "allow_delete_rows", "allow_sort", "allow_filter"},
		Handler:     addProtection,
	})
	r.register(Spec{
		Name: "named-range-create", Group: "validation",
		Description: "Define a workbook-scoped named range",
		Required:    []string{"filepath", "range_name", "range"},
		Optional:    []string{"sheet_name"},
		Handler:     createNamedRange,
	})

	// 导入导出
	r.register(Spec{
		Name: "io-import-csv", Group: "io",
		Description: "Import a CSV file into a worksheet",
		Required:    []string{"filepath", "csv_path"},
		Optional:    []string{"sheet_name", "start_cell"},
		Handler:     importCSV,
	})
	r.register(Spec{
		Name: "io-export-csv", Group: "io",
		Description: "Export a worksheet as CSV",
		Required:    []string{"filepath", "output_path"},
		Optional:    []string{"sheet_name"},
		Handler:     exportCSV,
	})
	r.register(Spec{
		Name: "io-export-json", Group: "io",
		Description: "Export a worksheet as JSON records, first row as keys",
		Required:    []string{"filepath", "output_path"},
		Optional:    []string{"sheet_name"},
		Handler:     exportJSON,
	})
	r.register(Spec{
		Name: "io-export-html", Group: "io",
		Description: "Export a worksheet as an HTML table",
		Required:    []string{"filepath", "output_path"},
		Optional:    []string{"sheet_name"},
		Handler:     exportHTML,
	})

	// 系统
	r.register(Spec{
		Name: "batch-execute", Group: "system",
		Description: "Run a list of operations, continuing past failures",
		Required:    []string{"operations"},
		Handler:     r.batchExecute,
	})
	r.register(Spec{
		Name: "server-status", Group: "system",
		Description: "Report server, cache and history statistics",
		Handler:     r.serverStatus,
	})

	// 历史别名：老客户端沿用的命名都继续可用
	r.alias("create_workbook", "workbook-create")
	r.alias("mcp1_create_workbook", "workbook-create")
	r.alias("get_workbook_metadata", "workbook-metadata")
	r.alias("mcp1_get_workbook_metadata", "workbook-metadata")
	r.alias("create_worksheet", "worksheet-create")
	r.alias("mcp1_create_worksheet", "worksheet-create")
	r.alias("delete_worksheet", "worksheet-delete")
	r.alias("mcp1_delete_worksheet", "worksheet-delete")
	r.alias("rename_worksheet", "worksheet-rename")
	r.alias("mcp1_rename_worksheet", "worksheet-rename")
	r.alias("copy_worksheet", "worksheet-copy")
	r.alias("mcp1_copy_worksheet", "worksheet-copy")
	r.alias("write_data_to_excel", "data-write")
	r.alias("mcp1_write_data_to_excel", "data-write")
	r.alias("read_data_from_excel", "data-read")
	r.alias("mcp1_read_data_from_excel", "data-read")
	r.alias("write_cell", "cell-write")
	r.alias("read_cell", "cell-read")
	r.alias("find_replace", "find-replace")
	r.alias("sort_data", "sort-range")
	r.alias("analyze_data", "data-analyze")
	r.alias("apply_formula", "formula-apply")
	r.alias("mcp1_apply_formula", "formula-apply")
	r.alias("validate_formula_syntax", "formula-validate")
	r.alias("mcp1_validate_formula_syntax", "formula-validate")
	r.alias("format_range", "format-range")
	r.alias("mcp1_format_range", "format-range")
	r.alias("advanced_formatting", "format-advanced")
	r.alias("conditional_formatting", "format-conditional")
	r.alias("merge_cells", "range-merge")
	r.alias("mcp1_merge_cells", "range-merge")
	r.alias("unmerge_cells", "range-unmerge")
	r.alias("mcp1_unmerge_cells", "range-unmerge")
	r.alias("create_chart", "chart-create")
	r.alias("mcp1_create_chart", "chart-create")
	r.alias("add_sparkline", "sparkline-add")
	r.alias("create_table", "table-create")
	r.alias("mcp1_create_table", "table-create")
	r.alias("create_pivot_table", "pivot-create")
	r.alias("mcp1_create_pivot_table", "pivot-create")
	r.alias("apply_autofilter", "filter-apply")
	r.alias("insert_rows", "rows-insert")
	r.alias("delete_rows", "rows-delete")
	r.alias("insert_columns", "columns-insert")
	r.alias("delete_columns", "columns-delete")
	r.alias("data_validation", "validation-add")
	r.alias("add_data_validation", "validation-add")
	r.alias("protect_worksheet", "protection-add")
	r.alias("create_named_range", "named-range-create")
	r.alias("import_csv", "io-import-csv")
	r.alias("export_csv", "io-export-csv")
	r.alias("export_json", "io-export-json")
	r.alias("export_html", "io-export-html")
	r.alias("batch_operations", "batch-execute")
	r.alias("get_server_status", "server-status")
}
