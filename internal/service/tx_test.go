package service

import "context"

type testTxRepos struct {
	collections CollectionRepository
	items       ItemRepository
	indexJobs   IndexJobRepository
}

func (t *testTxRepos) Collections() CollectionRepository {
	return t.collections
}

func (t *testTxRepos) Items() ItemRepository {
	return t.items
}

func (t *testTxRepos) IndexJobs() IndexJobRepository {
	return t.indexJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called int
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called++
	return fn(t.repos)
}
