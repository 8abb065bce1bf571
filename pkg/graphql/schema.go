// Package graphql exposes a read-only query surface over the visibility
// directory and roster. All asset and topology fields are resolved through
// the role filter; the caller's role comes from the authenticated request
// context, never from query arguments, and an unresolved role yields empty
// results rather than an error.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/rangeops/rangecore/pkg/roster"
	"github.com/rangeops/rangecore/pkg/team"
	"github.com/rangeops/rangecore/pkg/visibility"
)

// nodeType mirrors topology.Node minus properties.
var nodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Node",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":      &graphql.Field{Type: graphql.String},
		"type":      &graphql.Field{Type: graphql.String},
		"ownerTeam": &graphql.Field{Type: graphql.String},
		"iconName":  &graphql.Field{Type: graphql.String},
	},
})

var edgeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Edge",
	Fields: graphql.Fields{
		"source": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"target": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"label":  &graphql.Field{Type: graphql.String},
	},
})

var assetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Asset",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"projectId": &graphql.Field{Type: graphql.String},
		"name":      &graphql.Field{Type: graphql.String},
		"ip":        &graphql.Field{Type: graphql.String},
		"nodeId":    &graphql.Field{Type: graphql.String},
		"ownerTeam": &graphql.Field{Type: graphql.String},
		"isTarget":  &graphql.Field{Type: graphql.Boolean},
		"enabled":   &graphql.Field{Type: graphql.Boolean},
	},
})

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AssetStats",
	Fields: graphql.Fields{
		"count":                &graphql.Field{Type: graphql.Int},
		"highValueTargetCount": &graphql.Field{Type: graphql.Int},
	},
})

var viewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProjectView",
	Fields: graphql.Fields{
		"nodes":  &graphql.Field{Type: graphql.NewList(nodeType)},
		"edges":  &graphql.Field{Type: graphql.NewList(edgeType)},
		"assets": &graphql.Field{Type: graphql.NewList(assetType)},
	},
})

var basicUserType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BasicUser",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"username": &graphql.Field{Type: graphql.String},
		"role":     &graphql.Field{Type: graphql.String},
		"teamId":   &graphql.Field{Type: graphql.String},
		"enabled":  &graphql.Field{Type: graphql.Boolean},
	},
})

var projectArgs = graphql.FieldConfigArgument{
	"projectId": &graphql.ArgumentConfig{
		Type: graphql.NewNonNull(graphql.String),
	},
}

// GenerateSchema builds the read-only query schema.
func GenerateSchema(dir *visibility.Directory, users *roster.Service) (graphql.Schema, error) {
	queryFields := graphql.Fields{
		"health": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return "ok", nil
			},
		},
		"visibleAssets": &graphql.Field{
			Type: graphql.NewList(assetType),
			Args: projectArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				projectID, _ := p.Args["projectId"].(string)
				return dir.VisibleAssets(p.Context, projectID, callerRole(p.Context))
			},
		},
		"assetStats": &graphql.Field{
			Type: statsType,
			Args: projectArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				projectID, _ := p.Args["projectId"].(string)
				return dir.Stats(p.Context, projectID, callerRole(p.Context))
			},
		},
		"projectView": &graphql.Field{
			Type: viewType,
			Args: projectArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				projectID, _ := p.Args["projectId"].(string)
				return dir.ProjectView(p.Context, projectID, callerRole(p.Context))
			},
		},
		"users": &graphql.Field{
			Type: graphql.NewList(basicUserType),
			Args: graphql.FieldConfigArgument{
				"role": &graphql.ArgumentConfig{
					Type: graphql.String,
				},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if callerRole(p.Context) == team.RoleNone {
					return []roster.BasicUser{}, nil
				}
				roleFilter, _ := p.Args["role"].(string)
				return users.Basic(roleFilter)
			},
		},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields,
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}
