package mempool_test

import (
	"sync"
	"testing"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
	"github.com/meshledger/meshledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Tx{
				database.NewTx("n1", "wifi", "hello", 1000),
				database.NewTx("n2", "zigbee", "world", 1001),
				database.NewTx("n1", "wifi", "hello", 1000),
				database.NewTx("n3", "bluetooth", "", 999),
			},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for i, tx := range tst.txs {
						if n := mp.Add(tx); n != i+1 {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: size %d", failed, testID, n)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add new transactions, duplicates included.", success, testID)

					for i, tx := range mp.Copy() {
						if tx != tst.txs[i] {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i])
							t.Fatalf("\t%s\tTest %d:\tShould keep submission order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep submission order.", success, testID)

					trans := mp.DrainAll()
					if len(trans) != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould drain every transaction: %d", failed, testID, len(trans))
					}
					t.Logf("\t%s\tTest %d:\tShould drain every transaction.", success, testID)

					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be empty after a drain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be empty after a drain.", success, testID)

					if trans := mp.DrainAll(); trans == nil || len(trans) != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould drain an empty, non nil list.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould drain an empty, non nil list.", success, testID)

					mp.Add(tst.txs[0])
					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestConcurrentAdd(t *testing.T) {
	const g = 50

	mp := mempool.New()

	var wg sync.WaitGroup
	wg.Add(g)
	for i := 0; i < g; i++ {
		go func() {
			defer wg.Done()
			mp.Add(database.NewTx("n1", "wifi", "hello", 1000))
		}()
	}
	wg.Wait()

	if n := len(mp.DrainAll()); n != g {
		t.Fatalf("\t%s\tShould drain every concurrently added transaction: %d", failed, n)
	}
	t.Logf("\t%s\tShould drain every concurrently added transaction.", success)
}
