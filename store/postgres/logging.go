package postgres

import (
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog *zap.Logger

func init() {
	zlog, _ = logging.PackageLogger("postgres", "github.com/streamingfast/substreams-pcs-pricing/store/postgres")
}
