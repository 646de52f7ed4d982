package repo

import (
	perrors "github.com/iceymoss/go-news/pkg/errors"
	"github.com/iceymoss/go-news/pkg/xerr"
)

// 按错误码比较，errors.Is(err, ErrAlreadyExists) 对包装过的错误同样成立
var (
	ErrAlreadyExists = perrors.New(xerr.ARTICLE_EXISTS, "article already exists")
	ErrLocked        = perrors.New(xerr.ARTICLE_LOCKED, "article is locked by another worker")
	ErrNotFound      = perrors.New(xerr.ErrResourceNotFound, "record not found")
)
