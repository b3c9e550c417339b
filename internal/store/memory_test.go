package store

import (
	"context"
	"testing"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

func TestMemoryUpdateRewritesRecords(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	comp := &model.Company{ID: "c1", Name: "Acme", Slug: "acme"}
	if err := st.Companies().Create(ctx, comp); err != nil {
		t.Fatalf("create company: %v", err)
	}
	comp.ATSProvider = model.ProviderGreenhouse
	comp.ATSURL = "https://boards.greenhouse.io/acme"
	if err := st.Companies().Update(ctx, comp); err != nil {
		t.Fatalf("update company: %v", err)
	}
	got, err := st.Companies().GetBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if got == nil || got.ATSURL != comp.ATSURL {
		t.Fatalf("company update not persisted: %+v", got)
	}

	job := &model.Job{Source: model.ProviderGreenhouse, ExternalID: "123", Title: "Engineer"}
	if err := st.Jobs().Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	job.Title = "Staff Engineer"
	if err := st.Jobs().Update(ctx, job); err != nil {
		t.Fatalf("update job: %v", err)
	}
	gotJob, err := st.Jobs().GetByKey(ctx, model.ProviderGreenhouse, "123")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if gotJob == nil || gotJob.Title != "Staff Engineer" {
		t.Fatalf("job update not persisted: %+v", gotJob)
	}
}
