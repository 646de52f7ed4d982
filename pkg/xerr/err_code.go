package xerr

const (
	SERVER_COMMON_ERROR = 100001
	REQUEST_PARAM_ERROR = 100002
	CONFIG_ERROR        = 100003
	DB_ERROR            = 100004

	// 新闻业务错误码
	ARTICLE_EXISTS    = 200001 // 唯一键冲突，文章已存在
	ARTICLE_LOCKED    = 200002 // 翻译/评论锁被其他 worker 持有
	NOTHING_TO_RENDER = 200003 // 过滤后没有可渲染的文章
	LLM_ERROR         = 200004
	FETCH_ERROR       = 200005
	RENDER_ERROR      = 200006

	ErrInternalServer = 500 // HTTP 500

	ErrBadRequest       = 1000 // HTTP 400
	ErrInvalidInput     = 1001 // HTTP 400
	ErrMissingParameter = 1002 // HTTP 400

	ErrNotFound         = 1300 // HTTP 404
	ErrResourceNotFound = 1301 // HTTP 404
)
