package mock

// BodyFetcher mock for exercising the correlator without a browser
type BodyFetcher struct {
	ResponseBodyFn     func(id string) (string, bool, error)
	ResponseBodyCalled bool
}

func (f *BodyFetcher) ResponseBody(id string) (string, bool, error) {
	f.ResponseBodyCalled = true
	return f.ResponseBodyFn(id)
}
