/*
Package types defines the records exchanged with the tokenization backend
and the small enums shared by the store, the action layer and the UIs.

# Backend records

Unit:
  - A quantity of an environmental asset (untokenized or tokenized)
  - Carries its Issuance, whose warehouseProjectId links it to a Project
  - ProjectName, ProjectLink and RegistryProjectID are joined client side

Project:
  - Metadata fetched from GET /projects?projectIds=...
  - Only the fields used by the join are modeled

Page:
  - Listing envelope: {"data": [...], "pageCount": N}

APIError:
  - Error body of non-2xx responses: {"errors": [...], "message": "...", "error": "..."}

# UI enums

Theme, NotificationType, SortOrder and UnitsType are string types with the
exact values used on the wire or in durable storage, so they can be
persisted and compared without translation.

# Field Tags

All records carry JSON and YAML tags; the CLI prints either format.
*/
package types
