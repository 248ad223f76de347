// Package writer persists watchlists as TradingView import files.
//
// Files:
//   - Per-category:  Narratives - {Exchange} - {Category}.txt
//   - Combined:      Narratives - {Exchange} - Combined.txt
//   - Index:         Narratives - {Exchange} - Indicies.txt
//
// Each section starts with a "###{Category}" line. Files are overwritten on
// every run; parent directories are created as needed.
package writer
