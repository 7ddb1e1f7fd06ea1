// Package parser parses GCL rule files into Abstract Syntax Trees.
//
// Parsing happens in three stages:
//
//  1. Lexing: rule text becomes a flat token stream. Clauses are
//     line-delimited, so newlines are tokens; `#` comments and <<...>>
//     message blocks are handled here.
//  2. Recursive descent: tokens become a *ast.RuleSet. Syntax errors are
//     fatal to the file but accumulated, so one pass reports every problem.
//  3. Analysis: Analyze checks variable references. A rule referencing an
//     undefined %variable is excluded from evaluation; the rest of the file
//     stays evaluable.
//
// Example rule file:
//
//	let s3_buckets = Resources.*[ Type == 'AWS::S3::Bucket' ]
//
//	rule S3_BUCKET_SERVER_SIDE_ENCRYPTION when %s3_buckets !empty {
//	    %s3_buckets.Properties.BucketEncryption exists
//	    %s3_buckets.Properties.BucketEncryption.ServerSideEncryptionConfiguration[*].ServerSideEncryptionByDefault.SSEAlgorithm in ["aws:kms", "AES256"]
//	    <<
//	        Violation: S3 Bucket must enable server-side encryption.
//	        Fix: Set the BucketEncryption property with SSEAlgorithm aws:kms or AES256.
//	    >>
//	}
package parser
