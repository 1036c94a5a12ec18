package http

import xutil "GoldPredict/pkg/util"

// PageOffset converts a 1-based page into a row offset.
func PageOffset(page, pageSize int) int {
	page = xutil.ClampInt(page, 1, page)
	return (page - 1) * pageSize
}
