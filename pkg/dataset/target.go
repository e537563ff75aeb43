package dataset

import (
	"log/slog"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// SetTarget moves the named feature out of the features and makes it the
// target variable. A previously set target returns to the features first.
func (d *Dataset) SetTarget(name string) error {
	if d.isTarget(name) {
		return nil
	}
	if !d.isFeature(name) {
		return errors.Wrapf(ErrUnknownColumn, "target %q", name)
	}
	if d.target != nil {
		if err := d.UnsetTarget(); err != nil {
			return err
		}
	}
	t := d.features.Col(name)
	df := d.features.Drop(name)
	if df.Err != nil {
		return errors.Wrapf(df.Err, "set target %q", name)
	}
	d.features = df
	d.target = &t
	d.update()
	d.logger.Debug("Target set", slog.String("target", name), slog.String("type", typeName(t.Type())))
	return nil
}

// UnsetTarget returns the target to the end of the features.
func (d *Dataset) UnsetTarget() error {
	if d.target == nil {
		return ErrNoTarget
	}
	df := d.features.Mutate(d.target.Copy())
	if df.Err != nil {
		return errors.Wrap(df.Err, "unset target")
	}
	d.features = df
	d.target = nil
	d.update()
	return nil
}

// Target returns a copy of the target column and whether one is set.
func (d *Dataset) Target() (series.Series, bool) {
	if d.target == nil {
		return series.Series{}, false
	}
	return d.target.Copy(), true
}

// TargetName is the target column name, empty when unset.
func (d *Dataset) TargetName() string {
	if d.target == nil {
		return ""
	}
	return d.target.Name
}
