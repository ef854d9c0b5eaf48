package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/matchlist --output domain/matchlist --outpkg matchlistmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/matchlist --output domain/matchlist --outpkg matchlistmock --filename store_mock.go
