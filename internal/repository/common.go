package repository

import "strconv"

// formatUserID 用户类目标统一用十进制字符串作为 target_id
func formatUserID(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

// FormatUserID 暴露给 service 层拼装 target_id
func FormatUserID(userID uint64) string {
	return formatUserID(userID)
}
