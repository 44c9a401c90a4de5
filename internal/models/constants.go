package models

const (
	StatusWaiting  = "waiting"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	// DefaultPageSize размер страницы списков по умолчанию
	DefaultPageSize = 10

	// MaxPageSize верхняя граница размера страницы
	MaxPageSize = 100

	// TimelineCacheTTL время жизни кэша last/next проекций в Redis
	TimelineCacheTTL = 10 * 60 // 10 минут в секундах

	// WorkerQueueSize размер очереди воркера экспорта
	WorkerQueueSize = 1000

	// RateLimitRPSDefault запросов в секунду на клиента по умолчанию
	RateLimitRPSDefault = 10
)
