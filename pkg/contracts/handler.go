package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a group of API routes mounted behind the full middleware chain.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
