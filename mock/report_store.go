package mock

import "gitlab.com/extmon/extmon"

// ReportStore mock
type ReportStore struct {
	InitFn     func() error
	InitCalled bool

	PutFn     func(report *extmon.SessionReport) error
	PutCalled bool

	GetFn     func(id string) (*extmon.SessionReport, error)
	GetCalled bool

	ListFn     func() ([]string, error)
	ListCalled bool

	CloseFn     func() error
	CloseCalled bool
}

func (s *ReportStore) Init() error {
	s.InitCalled = true
	if s.InitFn != nil {
		return s.InitFn()
	}
	return nil
}

func (s *ReportStore) Put(report *extmon.SessionReport) error {
	s.PutCalled = true
	if s.PutFn != nil {
		return s.PutFn(report)
	}
	return nil
}

func (s *ReportStore) Get(id string) (*extmon.SessionReport, error) {
	s.GetCalled = true
	if s.GetFn != nil {
		return s.GetFn(id)
	}
	return nil, nil
}

func (s *ReportStore) List() ([]string, error) {
	s.ListCalled = true
	if s.ListFn != nil {
		return s.ListFn()
	}
	return nil, nil
}

func (s *ReportStore) Close() error {
	s.CloseCalled = true
	if s.CloseFn != nil {
		return s.CloseFn()
	}
	return nil
}
