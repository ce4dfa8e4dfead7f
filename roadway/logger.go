package roadway

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "roadway")
