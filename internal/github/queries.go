package github

// itemFieldsFragment поля ProjectV2Item, общие для PR и задач
const itemFieldsFragment = `
fragment ItemFields on ProjectV2Item {
  id
  project { id title }
  fieldValues(first: 50) {
    nodes {
      __typename
      ... on ProjectV2ItemFieldTextValue {
        text
        field { ... on ProjectV2FieldCommon { id name } }
      }
      ... on ProjectV2ItemFieldDateValue {
        date
        field { ... on ProjectV2FieldCommon { id name } }
      }
      ... on ProjectV2ItemFieldSingleSelectValue {
        name
        optionId
        field { ... on ProjectV2FieldCommon { id name } }
      }
      ... on ProjectV2ItemFieldIterationValue {
        title
        iterationId
        field { ... on ProjectV2FieldCommon { id name } }
      }
    }
  }
}
`

const projectItemsQuery = `
query($id: ID!) {
  node(id: $id) {
    ... on PullRequest { projectItems(first: 20) { nodes { ...ItemFields } } }
    ... on Issue { projectItems(first: 20) { nodes { ...ItemFields } } }
  }
}
` + itemFieldsFragment

const linkedIssueQuery = `
query($id: ID!) {
  node(id: $id) {
    ... on PullRequest {
      closingIssuesReferences(first: 5) {
        nodes {
          id
          number
          title
          url
          assignees(first: 20) { nodes { id login } }
          projectItems(first: 20) { nodes { ...ItemFields } }
        }
      }
    }
  }
}
` + itemFieldsFragment

const projectFieldsQuery = `
query($id: ID!) {
  node(id: $id) {
    ... on ProjectV2 {
      fields(first: 50) {
        nodes { ... on ProjectV2FieldCommon { id name dataType } }
      }
    }
  }
}
`

const fieldChoicesQuery = `
query($id: ID!) {
  node(id: $id) {
    ... on ProjectV2SingleSelectField { options { id name } }
    ... on ProjectV2IterationField {
      configuration {
        iterations { id title startDate }
        completedIterations { id title startDate }
      }
    }
  }
}
`

const updateTextMutation = `
mutation($project: ID!, $item: ID!, $field: ID!, $text: String!) {
  updateProjectV2ItemFieldValue(input: {projectId: $project, itemId: $item, fieldId: $field, value: {text: $text}}) {
    projectV2Item { id }
  }
}
`

const updateDateMutation = `
mutation($project: ID!, $item: ID!, $field: ID!, $date: Date!) {
  updateProjectV2ItemFieldValue(input: {projectId: $project, itemId: $item, fieldId: $field, value: {date: $date}}) {
    projectV2Item { id }
  }
}
`

const updateOptionMutation = `
mutation($project: ID!, $item: ID!, $field: ID!, $option: String!) {
  updateProjectV2ItemFieldValue(input: {projectId: $project, itemId: $item, fieldId: $field, value: {singleSelectOptionId: $option}}) {
    projectV2Item { id }
  }
}
`

const updateIterationMutation = `
mutation($project: ID!, $item: ID!, $field: ID!, $iteration: String!) {
  updateProjectV2ItemFieldValue(input: {projectId: $project, itemId: $item, fieldId: $field, value: {iterationId: $iteration}}) {
    projectV2Item { id }
  }
}
`

const addAssigneesMutation = `
mutation($assignable: ID!, $assignees: [ID!]!) {
  addAssigneesToAssignable(input: {assignableId: $assignable, assigneeIds: $assignees}) {
    clientMutationId
  }
}
`
