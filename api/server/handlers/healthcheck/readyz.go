package healthcheck

import (
	"fmt"
	"net/http"

	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/api/server/shared/apierrors"
)

type ReadyzHandler struct {
	config *config.Config
}

func NewReadyzHandler(config *config.Config) *ReadyzHandler {
	return &ReadyzHandler{config: config}
}

func (h *ReadyzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	db := h.config.Repository.DB

	switch db.Dialector.Name() {
	case "sqlite":
		writeHealthy(w)
		return
	case "postgres":
		sqlDB, err := db.DB()

		if err != nil {
			apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
			return
		}

		if err := sqlDB.Ping(); err != nil {
			apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err))
			return
		}

		writeHealthy(w)
		return
	}

	apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(
		fmt.Errorf("database is not supported"),
		http.StatusBadRequest,
	))
}
