package gatewaysvc

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/ratiba/core"
)

// Semesters lists the student's semesters. year == 0 means all years;
// includeClasses pulls the class lists along.
func (gw *HTTPGateway) Semesters(ctx context.Context, year int, includeClasses bool) ([]core.BackendSemester, error) {
	params := make(url.Values)
	if year != 0 {
		params.Set("year", intVal(year))
	}
	if includeClasses {
		params.Set("include_classes", "true")
	}

	var semesters []core.BackendSemester
	if err := gw.do(ctx, http.MethodGet, queryPath("/semesters", params), nil, &semesters, true); err != nil {
		return nil, err
	}
	return semesters, nil
}

func (gw *HTTPGateway) CreateSemester(ctx context.Context, ns core.NewBackendSemester) (core.BackendSemester, error) {
	var sem core.BackendSemester
	if err := gw.do(ctx, http.MethodPost, "/semesters", ns, &sem, true); err != nil {
		return core.BackendSemester{}, err
	}
	return sem, nil
}

func (gw *HTTPGateway) CreateClass(ctx context.Context, semesterID core.ID, nc core.NewBackendClass) (core.BackendClass, error) {
	var cls core.BackendClass
	path := "/semesters/" + pathEscape(semesterID) + "/classes"
	if err := gw.do(ctx, http.MethodPost, path, nc, &cls, true); err != nil {
		return core.BackendClass{}, err
	}
	return cls, nil
}

func (gw *HTTPGateway) DeleteClass(ctx context.Context, semesterID, classID core.ID) error {
	path := "/semesters/" + pathEscape(semesterID) + "/classes/" + pathEscape(classID)
	return gw.do(ctx, http.MethodDelete, path, nil, nil, true)
}

func (gw *HTTPGateway) PreviousClasses(ctx context.Context) ([]core.PreviousClass, error) {
	var records []core.PreviousClass
	if err := gw.do(ctx, http.MethodGet, "/previous-classes", nil, &records, true); err != nil {
		return nil, err
	}
	return records, nil
}

func (gw *HTTPGateway) CreatePreviousClass(ctx context.Context, npc core.NewPreviousClass) (core.PreviousClass, error) {
	var record core.PreviousClass
	if err := gw.do(ctx, http.MethodPost, "/previous-classes", npc, &record, true); err != nil {
		return core.PreviousClass{}, err
	}
	return record, nil
}

func (gw *HTTPGateway) DeletePreviousClass(ctx context.Context, id core.ID) error {
	return gw.do(ctx, http.MethodDelete, "/previous-classes/"+pathEscape(id), nil, nil, true)
}
