package cmd

import (
	"database/sql"
	"log"
	"time"

	"registry/domain"
	"registry/domain/config"
	"registry/infrastructure/dbhandler"
	"registry/interface/repository"
	"registry/usecase"

	_ "github.com/lib/pq"
)

func defaultDependencyInject() {
	var store usecase.Store
	var journal usecase.OperationJournal
	var memoRepository usecase.MemoRepository

	switch config.GetStore() {
	case config.PostgresStore:
		var err error
		dbPool, err = sql.Open("postgres", config.GetDbUri())
		if err != nil {
			log.Fatal(err)
		}
		dbPool.SetMaxOpenConns(config.GetMaxDbConnections())
		dbPool.SetMaxIdleConns(5)
		dbPool.SetConnMaxIdleTime(1 * time.Minute)
		dbPool.SetConnMaxLifetime(4 * time.Hour)

		dbHandler = dbhandler.DBHandler{DB: dbPool}

		store = repository.NewPostgresStore(dbHandler)
		journal = repository.NewOperationRepository(dbHandler)
		memoRepository = repository.NewMemoRepository(dbHandler)

	case config.MemoryStore:
		log.Printf("⚠️ Using memory store, nothing survives this process.\n")
		memoryStore := repository.NewMemoryStore()
		store = memoryStore
		journal = memoryStore
		memoRepository = memoryStore
	}

	memoInteractor = usecase.NewMemoInteractor(memoRepository)
	registryInteractor = usecase.NewRegistryInteractor(store, domain.SystemClock{}, journal)
}

var dbPool *sql.DB
var dbHandler dbhandler.DBHandler
var registryInteractor *usecase.RegistryInteractor
var memoInteractor *usecase.MemoInteractor
