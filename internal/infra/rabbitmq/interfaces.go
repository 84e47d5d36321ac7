package rabbitmq

import "dealer-portal/internal/infra"

var _ infra.Publisher = (*Publisher)(nil)
