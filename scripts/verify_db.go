package main

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/wwwzy/RagAgent/internal/storage"
	"gorm.io/gorm"
)

func main() {
	// Connect to the database
	db, err := gorm.Open(sqlite.Open("ragagent.db"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	fmt.Println("--- Verifying RagAgent Database ---")

	// Verify DocumentChunks
	var chunkCount int64
	// We need to verify if the table exists first to avoid panic if migration didn't run
	if !db.Migrator().HasTable(&storage.DocumentChunk{}) {
		fmt.Println("Table 'document_chunks' does not exist yet.")
	} else {
		db.Model(&storage.DocumentChunk{}).Count(&chunkCount)
		fmt.Printf("Total Document Chunks: %d\n", chunkCount)

		if chunkCount > 0 {
			var chunks []storage.DocumentChunk
			db.Order("updated_at desc").Limit(5).Find(&chunks)
			fmt.Println("Latest 5 Chunks (Local Time):")
			for _, c := range chunks {
				fmt.Printf("  [%s] %s dim=%d len=%d\n",
					c.UpdatedAt.Local().Format("2006-01-02 15:04:05"), c.ChunkID, c.EmbeddingDim, len(c.Text))
			}
		}
	}

	fmt.Println("\n------------------------------------")

	// Verify AuditRecords
	var auditCount int64
	if !db.Migrator().HasTable(&storage.AuditRecord{}) {
		fmt.Println("Table 'audit_records' does not exist yet.")
	} else {
		db.Model(&storage.AuditRecord{}).Count(&auditCount)
		fmt.Printf("Total Audit Records: %d\n", auditCount)

		if auditCount > 0 {
			var records []storage.AuditRecord
			db.Order("started_at desc").Limit(5).Find(&records)
			fmt.Println("Latest 5 Audit Records (Local Time):")
			for _, r := range records {
				fmt.Printf("  [%s] %s status=%s trace=%s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Action, r.Status, r.TraceID)
			}
		}
	}
}
