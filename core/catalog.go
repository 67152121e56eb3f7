package core

import (
	"context"
	"fmt"

	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/outwriter"
)

// ExecuteCatalogList prints the catalog entries of one province, or all of them.
func ExecuteCatalogList(_ context.Context, cfg *contract.Config, env Env, province string) error {
	return outwriter.NewOutWriter().WriteCatalog(catalog.FilterProvince(env.Catalog, province), cfg)
}

// ExecuteCatalogProvinces prints the province options.
func ExecuteCatalogProvinces(_ context.Context, cfg *contract.Config, env Env) error {
	return outwriter.NewOutWriter().WriteOptions("Province", catalog.Provinces(env.Catalog), cfg)
}

// ExecuteCatalogDifficulties prints the difficulty vocabulary.
func ExecuteCatalogDifficulties(_ context.Context, cfg *contract.Config, env Env) error {
	return outwriter.NewOutWriter().WriteOptions("Difficulty", catalog.Difficulties(env.Artifacts), cfg)
}

// ExecuteCatalogVerify checks the stored features against the fitted transform.
// It prints every drifting row and fails when there is at least one.
func ExecuteCatalogVerify(_ context.Context, cfg *contract.Config, env Env, tol float64) error {
	reports, err := catalog.Verify(env.Catalog, env.Artifacts, tol)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteDrift(reports, cfg); err != nil {
		return err
	}
	if len(reports) > 0 {
		return fmt.Errorf("%d of %d catalog rows drift from the fitted transform", len(reports), len(env.Catalog))
	}
	return nil
}
