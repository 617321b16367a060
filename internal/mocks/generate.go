package mocks

//go:generate mockery --name RawEventStore --srcpkg github.com/headcount-lab/headcount/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name RollupStore --srcpkg github.com/headcount-lab/headcount/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
