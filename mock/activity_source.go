package mock

import "gitlab.com/extmon/extmon"

// ActivitySource mock standing in for the profile activity log
type ActivitySource struct {
	NewActivitiesFn     func() ([]*extmon.ActivityEvent, error)
	NewActivitiesCalled bool
}

func (s *ActivitySource) NewActivities() ([]*extmon.ActivityEvent, error) {
	s.NewActivitiesCalled = true
	return s.NewActivitiesFn()
}
