package repository

import "errors"

var ErrNotFound = errors.New("not found")

// 一意制約違反（プロモコード重複など）
var ErrDuplicate = errors.New("duplicate")
