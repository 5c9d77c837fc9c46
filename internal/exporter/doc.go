// Package exporter renders the transformed result table into downloadable
// artifacts.
//
// ExcelExporter builds an .xlsx workbook in memory through the excelize
// stream writer. WordExporter delegates .docx generation to the backend's
// document endpoint and returns the raw bytes. CSVExporter writes a
// UTF-8-BOM-prefixed CSV for spreadsheet compatibility. Every artifact
// carries its MIME type and a default filename the caller may override.
package exporter
