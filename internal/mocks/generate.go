package mocks

//go:generate mockery --name CounterStore --srcpkg github.com/aevon-lab/callstats/internal/syncdelta --output ./syncdelta --outpkg syncdeltamocks --with-expecter
//go:generate mockery --name RecordSource --srcpkg github.com/aevon-lab/callstats/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name CallLog --srcpkg github.com/aevon-lab/callstats/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name IdentityLookup --srcpkg github.com/aevon-lab/callstats/internal/enrichment --output ./enrichment --outpkg enrichmentmocks --with-expecter
