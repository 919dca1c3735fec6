package bno08x

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/shtp"
)

// EnableFeature enables a report with the default interval.
func (c *Client) EnableFeature(id ReportID) error {
	return c.EnableFeatureWith(id, FeatureConfig{Interval: c.Config.ReportInterval})
}

// EnableFeatureWith enables a report with a specific configuration.
// The report a raw report depends on is enabled first if needed.
// The activity classifier always gets all classes enabled.
func (c *Client) EnableFeatureWith(id ReportID, fc FeatureConfig) error {
	if dep, ok := Dependency(id); ok {
		if _, enabled := c.features[dep]; !enabled {
			glog.V(1).Infof("enable %s required by %s", ReportName(dep), ReportName(id))
			depConf := fc
			depConf.SensorConfig = 0
			if err := c.enableFeature(dep, depConf); err != nil {
				return fmt.Errorf("enable dependency: %w", err)
			}
		}
	}
	if id == ReportActivityClassifier {
		fc.SensorConfig = EnabledActivities
	}
	return c.enableFeature(id, fc)
}

func (c *Client) enableFeature(id ReportID, fc FeatureConfig) error {
	glog.V(1).Infof("enable %s interval %v", ReportName(id), fc.Interval)
	if err := c.send(shtp.ChannelControl, setFeatureCommand(id, fc)); err != nil {
		return err
	}
	start := c.Clock.Now()
	for c.Clock.Now().Sub(start) < c.Config.FeatureTimeout {
		c.processAvailable(c.Config.MaxPacketsPerPoll)
		if _, ok := c.features[id]; ok {
			return nil
		}
		c.Clock.Sleep(c.Config.PollInterval)
	}
	return c.timeout(&TimeoutError{Op: "enable " + ReportName(id), Timeout: c.Config.FeatureTimeout})
}

// DisableFeature stops a report and forgets its last reading.
func (c *Client) DisableFeature(id ReportID) error {
	c.forgetFeature(id)
	return c.send(shtp.ChannelControl, setFeatureCommand(id, FeatureConfig{}))
}

// Enabled reports whether a report has been confirmed by the hub.
func (c *Client) Enabled(id ReportID) bool {
	_, ok := c.features[id]
	return ok
}

// Features returns the configurations confirmed by the hub.
func (c *Client) Features() map[ReportID]FeatureResponse {
	m := make(map[ReportID]FeatureResponse, len(c.features))
	for id, fr := range c.features {
		m[id] = fr
	}
	return m
}

func (c *Client) forgetFeature(id ReportID) {
	delete(c.features, id)
	delete(c.readings, id)
	if id == ReportShakeDetector {
		c.shaken = false
	}
}
